package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "ViKey", "vikey"},
		{"strips accents", "Descripción", "descripcion"},
		{"strips accents and tilde", "Agrupación", "agrupacion"},
		{"removes whitespace", "parent id", "parentid"},
		{"keeps underscores", "vi_label", "vi_label"},
		{"keeps digits", "col2", "col2"},
		{"drops punctuation", "title (es)", "titlees"},
		{"empty input", "", ""},
		{"only punctuation", "¡¿?!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeKey(tt.input))
		})
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	inputs := []string{"Descripción", "VI Label", "weird-key.name", "ítem"}
	for _, in := range inputs {
		once := NormalizeKey(in)
		assert.Equal(t, once, NormalizeKey(once))
	}
}
