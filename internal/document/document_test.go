package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSections(t *testing.T) {
	raw := []byte(`{
		"ui": {"theme": "dark"},
		"meta": {"name": "Checklist", "version": 3},
		"columns": [{"key": "id", "label": "ID", "type": "number"}],
		"nodes": [{"id": 1, "title": "First"}],
		"intro": ["Bienvenido", 2],
		"questions": {"q1": "¿Listo?"},
		"scales": {"VI": [{"key": "1", "label": "Bajo"}]}
	}`)

	doc := Parse(raw)
	assert.NotNil(t, doc.UI)
	require.Len(t, doc.Meta, 2)
	assert.Equal(t, "name", doc.Meta[0].Key)
	assert.Equal(t, "Checklist", doc.Meta[0].Value)
	require.Len(t, doc.Columns, 1)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, []string{"Bienvenido", "2"}, doc.Intro)
	require.Len(t, doc.Questions, 1)
	assert.Equal(t, "q1", doc.Questions[0].Key)

	label, ok := doc.Scales.LookupVI("1")
	assert.True(t, ok)
	assert.Equal(t, "Bajo", label)
}

func TestParseMalformedSectionIsIsolated(t *testing.T) {
	// A broken columns value must not take the nodes down with it.
	raw := []byte(`{"columns": "not an array", "nodes": [{"id": 1}]}`)

	doc := Parse(raw)
	assert.Empty(t, doc.Columns)
	assert.Len(t, doc.Nodes, 1)
}

func TestParseNonObject(t *testing.T) {
	doc := Parse([]byte(`[1,2,3]`))
	assert.Empty(t, doc.Nodes)
	assert.Empty(t, doc.Meta)
}

func TestParseMetaPreservesStoredOrder(t *testing.T) {
	raw := []byte(`{"meta": {"z": 1, "a": 2, "m": 3}}`)

	doc := Parse(raw)
	require.Len(t, doc.Meta, 3)
	assert.Equal(t, "z", doc.Meta[0].Key)
	assert.Equal(t, "a", doc.Meta[1].Key)
	assert.Equal(t, "m", doc.Meta[2].Key)
}

func TestNodeFlatCustomWinsOnCollision(t *testing.T) {
	var n Node
	raw := `{"id": 1, "title": "top", "custom": {"title": "nested", "extra": "e"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &n))

	flat, order := n.Flat()
	assert.Equal(t, "nested", flat["title"])
	assert.Equal(t, "e", flat["extra"])
	assert.Equal(t, []string{"id", "title", "extra"}, order)
}

func TestNodeKeysExcludeCustom(t *testing.T) {
	var n Node
	raw := `{"a": 1, "custom": {"b": 2}, "c": 3}`
	require.NoError(t, json.Unmarshal([]byte(raw), &n))

	assert.Equal(t, []string{"a", "c"}, n.Keys())
	assert.Equal(t, []string{"b"}, n.CustomKeys())
}

func TestStringify(t *testing.T) {
	tests := []struct {
		input    interface{}
		expected string
	}{
		{nil, ""},
		{"text", "text"},
		{float64(7), "7"},
		{float64(2.5), "2.5"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Stringify(tt.input))
	}
}
