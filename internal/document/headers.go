package document

import (
	"fmt"
	"strings"
)

// preferredKeyOrder is the fixed front of the inferred column sequence when a
// document declares no columns of its own.
var preferredKeyOrder = []string{
	"id", "code", "title", "type", "parentId",
	"viKey", "vcKey", "weight", "required", "active", "order",
}

// ResolveHeaders turns an ordered column specification into three same-length
// sequences: column keys, display headers, and lower-cased types.
//
// Entries with an empty key are skipped. The header is the trimmed label, or
// the key when no label is set. A header that already appeared earlier gets
// the key appended in parentheses; only the first occurrence keeps the bare
// label.
func ResolveHeaders(cols []Column) (keys, headers, types []string) {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			continue
		}

		header := strings.TrimSpace(c.Label)
		if header == "" {
			header = key
		}
		if seen[header] {
			header = fmt.Sprintf("%s (%s)", header, key)
		}
		seen[header] = true

		keys = append(keys, key)
		headers = append(headers, header)
		types = append(types, strings.ToLower(strings.TrimSpace(c.Type)))
	}
	return keys, headers, types
}

// InferColumnKeys derives column keys from the nodes themselves, for
// documents that declare no columns. Top-level and nested custom attribute
// names are collected in first-seen order across all nodes (the custom
// container itself excluded), then re-ordered so the preferred keys come
// first.
func InferColumnKeys(nodes []Node) []string {
	seen := make(map[string]bool)
	var discovered []string
	add := func(k string) {
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		discovered = append(discovered, k)
	}

	for _, n := range nodes {
		for _, k := range n.Keys() {
			add(k)
		}
		for _, k := range n.CustomKeys() {
			add(k)
		}
	}

	var out []string
	picked := make(map[string]bool, len(preferredKeyOrder))
	for _, k := range preferredKeyOrder {
		if seen[k] {
			out = append(out, k)
			picked[k] = true
		}
	}
	for _, k := range discovered {
		if !picked[k] {
			out = append(out, k)
		}
	}
	return out
}
