package document

import "encoding/json"

// emptyObject is what non-object payloads unwrap to.
var emptyObject = []byte("{}")

// Unwrap extracts the canonical flat document from a stored payload. Three
// historical shapes are recognized, tried in order:
//
//  1. {template: ..., data: {...}}            -> data
//  2. {data: {columns|nodes|meta, ...}, ...}  -> data (accidental double wrap)
//  3. anything else                           -> returned unchanged
//
// Non-object input yields an empty object. Unwrap is idempotent: the flat
// shape has no template/data wrapper left to strip.
func Unwrap(raw []byte) []byte {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return emptyObject
	}

	if dataRaw, ok := top["data"]; ok {
		var data map[string]json.RawMessage
		if err := json.Unmarshal(dataRaw, &data); err == nil && data != nil {
			if _, wrapped := top["template"]; wrapped {
				return dataRaw
			}
			for _, marker := range []string{"columns", "nodes", "meta"} {
				if _, found := data[marker]; found {
					return dataRaw
				}
			}
		}
	}
	return raw
}
