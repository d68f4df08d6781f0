package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// customContainer is the node attribute holding nested custom fields.
const customContainer = "custom"

// Entry is one ordered key/value pair from a JSON object. Meta and question
// objects are kept as ordered entries instead of maps so exports are stable.
type Entry struct {
	Key   string
	Value interface{}
}

// Column is one entry of a document's column specification. Legacy documents
// use key/id and label/name interchangeably.
type Column struct {
	Key   string
	Label string
	Type  string
}

// UnmarshalJSON accepts both {key,label,type} and the older {id,name,type}.
func (c *Column) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.Key = Stringify(firstOf(m, "key", "id"))
	c.Label = Stringify(firstOf(m, "label", "name"))
	c.Type = Stringify(m["type"])
	return nil
}

// ScaleEntry maps a scale code to its display label.
type ScaleEntry struct {
	Key   string
	Label string
}

// UnmarshalJSON tolerates numeric keys and labels in legacy scale tables.
func (e *ScaleEntry) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	e.Key = Stringify(m["key"])
	e.Label = Stringify(m["label"])
	return nil
}

// Scales holds the auxiliary code-to-label tables referenced by node fields.
type Scales struct {
	VI []ScaleEntry `json:"VI"`
	VC []ScaleEntry `json:"VC"`
}

// LookupVI returns the label for a VI code. The first match wins.
func (s Scales) LookupVI(code string) (string, bool) {
	for _, e := range s.VI {
		if e.Key == code {
			return e.Label, true
		}
	}
	return "", false
}

// LookupVC returns the label for a VC code. The first match wins.
func (s Scales) LookupVC(code string) (string, bool) {
	for _, e := range s.VC {
		if e.Key == code {
			return e.Label, true
		}
	}
	return "", false
}

// Node is one data row of a document. Top-level attributes and the nested
// custom container are kept separately, both with their stored key order.
// Parent references are weak: parentId is resolved by id lookup, never by
// structural traversal.
type Node struct {
	attrs      map[string]interface{}
	keys       []string
	custom     map[string]interface{}
	customKeys []string
}

// UnmarshalJSON decodes the node while recording attribute order.
func (n *Node) UnmarshalJSON(data []byte) error {
	raw, keys, err := decodeOrdered(data)
	if err != nil {
		return err
	}

	n.attrs = make(map[string]interface{}, len(raw))
	n.keys = n.keys[:0]
	n.custom = nil
	n.customKeys = nil

	for _, k := range keys {
		if k == customContainer {
			cv, ck, cerr := decodeOrdered(raw[k])
			if cerr == nil {
				n.custom = make(map[string]interface{}, len(cv))
				n.customKeys = ck
				for _, key := range ck {
					var v interface{}
					if json.Unmarshal(cv[key], &v) == nil {
						n.custom[key] = v
					}
				}
			}
			continue
		}
		var v interface{}
		if err := json.Unmarshal(raw[k], &v); err != nil {
			return err
		}
		n.attrs[k] = v
		n.keys = append(n.keys, k)
	}
	return nil
}

// Keys returns the top-level attribute names in stored order, custom excluded.
func (n Node) Keys() []string {
	return n.keys
}

// CustomKeys returns the nested custom attribute names in stored order.
func (n Node) CustomKeys() []string {
	return n.customKeys
}

// Get returns a top-level attribute by exact name.
func (n Node) Get(name string) (interface{}, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Flat merges the top-level attributes with the custom container, custom
// values winning on key collision. The returned order lists top-level names
// first, then custom-only names, each in stored order.
func (n Node) Flat() (map[string]interface{}, []string) {
	flat := make(map[string]interface{}, len(n.attrs)+len(n.custom))
	order := make([]string, 0, len(n.keys)+len(n.customKeys))
	for _, k := range n.keys {
		flat[k] = n.attrs[k]
		order = append(order, k)
	}
	for _, k := range n.customKeys {
		if _, seen := flat[k]; !seen {
			order = append(order, k)
		}
		flat[k] = n.custom[k]
	}
	return flat, order
}

// Document is the canonical flat shape of a template or file payload.
type Document struct {
	UI        json.RawMessage
	Meta      []Entry
	Columns   []Column
	Nodes     []Node
	Intro     []string
	Questions []Entry
	Scales    Scales
}

// Parse decodes a flat document (the Unwrap output). Individual sections are
// parsed best-effort: a malformed columns array must not take the nodes down
// with it, since legacy documents are full of partial shapes.
func Parse(raw []byte) *Document {
	doc := &Document{}

	top, _, err := decodeOrdered(raw)
	if err != nil {
		return doc
	}

	if v, ok := top["ui"]; ok {
		doc.UI = v
	}
	if v, ok := top["meta"]; ok {
		doc.Meta = parseEntries(v)
	}
	if v, ok := top["columns"]; ok {
		var cols []Column
		if json.Unmarshal(v, &cols) == nil {
			doc.Columns = cols
		}
	}
	if v, ok := top["nodes"]; ok {
		var nodes []Node
		if json.Unmarshal(v, &nodes) == nil {
			doc.Nodes = nodes
		}
	}
	if v, ok := top["intro"]; ok {
		var items []interface{}
		if json.Unmarshal(v, &items) == nil {
			for _, it := range items {
				doc.Intro = append(doc.Intro, Stringify(it))
			}
		}
	}
	if v, ok := top["questions"]; ok {
		doc.Questions = parseEntries(v)
	}
	if v, ok := top["scales"]; ok {
		var scales Scales
		if json.Unmarshal(v, &scales) == nil {
			doc.Scales = scales
		}
	}
	return doc
}

// parseEntries decodes a JSON object into ordered entries.
func parseEntries(raw json.RawMessage) []Entry {
	vals, keys, err := decodeOrdered(raw)
	if err != nil {
		return nil
	}
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		var v interface{}
		if json.Unmarshal(vals[k], &v) != nil {
			continue
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return entries
}

// decodeOrdered decodes a JSON object keeping raw member values and the order
// keys appear in the input. Duplicate keys keep their first position, last
// value.
func decodeOrdered(data []byte) (map[string]json.RawMessage, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("not a JSON object")
	}

	vals := make(map[string]json.RawMessage)
	var keys []string
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected object key token %v", kt)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := vals[key]; !dup {
			keys = append(keys, key)
		}
		vals[key] = v
	}
	return vals, keys, nil
}

// firstOf returns the first present value among the candidate keys.
func firstOf(m map[string]interface{}, names ...string) interface{} {
	for _, name := range names {
		if v, ok := m[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

// Stringify renders a scalar JSON value the way it was written: integral
// floats without the exponent form float64 formatting would produce.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
