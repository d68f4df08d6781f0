package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// groupingFieldNames are the attribute names historically used for the
// grouping column, across the naming conventions that accumulated in stored
// templates.
var groupingFieldNames = []string{
	"agrupacion", "agrupación", "agrupacion_es", "agrup", "grouping", "group",
}

// flatIndex holds the four lookup views over a node's flattened attributes:
// exact, lower-cased, upper-cased, and normalized names. Earlier attributes
// win when two names collapse to the same derived form.
type flatIndex struct {
	exact map[string]interface{}
	lower map[string]interface{}
	upper map[string]interface{}
	norm  map[string]interface{}
}

func newFlatIndex(attrs map[string]interface{}, order []string) *flatIndex {
	idx := &flatIndex{
		exact: attrs,
		lower: make(map[string]interface{}, len(attrs)),
		upper: make(map[string]interface{}, len(attrs)),
		norm:  make(map[string]interface{}, len(attrs)),
	}
	put := func(m map[string]interface{}, k string, v interface{}) {
		if _, taken := m[k]; !taken {
			m[k] = v
		}
	}
	for _, k := range order {
		v := attrs[k]
		put(idx.lower, strings.ToLower(k), v)
		put(idx.upper, strings.ToUpper(k), v)
		put(idx.norm, NormalizeKey(k), v)
	}
	return idx
}

// lookup tries one candidate name through the four views, most exact first.
func (idx *flatIndex) lookup(name string) (interface{}, bool) {
	if v, ok := idx.exact[name]; ok {
		return v, true
	}
	if v, ok := idx.lower[strings.ToLower(name)]; ok {
		return v, true
	}
	if v, ok := idx.upper[strings.ToUpper(name)]; ok {
		return v, true
	}
	if v, ok := idx.norm[NormalizeKey(name)]; ok {
		return v, true
	}
	return nil, false
}

// lookupAny tries candidate names in order through lookup.
func (idx *flatIndex) lookupAny(names ...string) (interface{}, bool) {
	for _, name := range names {
		if v, ok := idx.lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

// FlattenRow resolves one node into a row of values aligned to columnKeys.
// Templates accumulated several naming conventions over time (English and
// Spanish, camelCase and snake_case, flat and custom-nested), so each column
// walks a cascade of lookups instead of a single map access; unresolvable
// columns degrade to an empty cell rather than dropping the row.
func FlattenRow(n Node, all []Node, columnKeys []string, scales Scales) []interface{} {
	flat, order := n.Flat()
	idx := newFlatIndex(flat, order)

	row := make([]interface{}, len(columnKeys))
	for i, key := range columnKeys {
		row[i] = resolveCell(idx, all, key, scales)
	}
	return row
}

func resolveCell(idx *flatIndex, all []Node, key string, scales Scales) interface{} {
	nk := NormalizeKey(key)

	val, found := idx.lookupAny(candidateNames(key, nk)...)
	if !found && strings.Contains(nk, "parent") {
		val, found = resolveParentCode(idx, all)
	}
	if !found {
		val, found = resolveStandardName(idx, nk)
	}
	if !found {
		return ""
	}
	return CellValue(applyScaleLabel(val, nk, scales))
}

// candidateNames builds the ordered list of names to try for a column key:
// the raw key and its lower, upper, and normalized forms, plus the grouping
// name variants when the key looks like a grouping field.
func candidateNames(key, nk string) []string {
	cands := []string{key, strings.ToLower(key), strings.ToUpper(key), nk}
	if strings.Contains(nk, "agrup") || strings.Contains(nk, "agrupa") || strings.Contains(nk, "agr") {
		cands = append(cands, groupingFieldNames...)
	}
	if nk != "" && isDigits(nk) {
		cands = append(cands, nk)
	}
	return cands
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// resolveParentCode follows the node's parentId to the parent node and takes
// its code. Ids are compared stringified since legacy documents mix numeric
// and string ids.
func resolveParentCode(idx *flatIndex, all []Node) (interface{}, bool) {
	pidVal, ok := idx.lookupAny("parentId", "parent")
	if !ok {
		return nil, false
	}
	pid := Stringify(pidVal)
	if pid == "" {
		return nil, false
	}

	for _, cand := range all {
		id, _ := cand.Get("id")
		if Stringify(id) != pid {
			continue
		}
		flat, order := cand.Flat()
		if code, ok := newFlatIndex(flat, order).lookupAny("code", "codigo"); ok {
			return code, true
		}
		return nil, false
	}
	return nil, false
}

// resolveStandardName maps well-known normalized key families to their node
// attribute names.
func resolveStandardName(idx *flatIndex, nk string) (interface{}, bool) {
	switch {
	case nk == "id":
		return idx.lookupAny("id")
	case nk == "code" || nk == "codigo" || nk == "cod":
		return idx.lookupAny("code", "codigo")
	case nk == "title" || nk == "nombre" || strings.Contains(nk, "enunci"):
		return idx.lookupAny("title", "titulo", "name")
	case strings.Contains(nk, "observ"):
		return idx.lookupAny("observaciones", "obs")
	case nk == "desc" || strings.Contains(nk, "descrip"):
		return idx.lookupAny("desc", "descripcion", "observaciones")
	case strings.Contains(nk, "vi") && !strings.Contains(nk, "label"):
		return idx.lookupAny("viKey", "vi")
	case strings.Contains(nk, "vc") && !strings.Contains(nk, "label"):
		return idx.lookupAny("vcKey", "vc")
	}
	return nil, false
}

// applyScaleLabel swaps a scale code for its display label on *_label
// columns. An unknown code is left unchanged: stored documents contain codes
// outside their scale tables and the export must not blank them out.
func applyScaleLabel(val interface{}, nk string, scales Scales) interface{} {
	code, ok := val.(string)
	if !ok || code == "" {
		return val
	}
	if nk == "vilabel" || (strings.Contains(nk, "vi") && strings.Contains(nk, "label")) {
		if label, found := scales.LookupVI(code); found {
			return label
		}
	}
	if nk == "vclabel" || (strings.Contains(nk, "vc") && strings.Contains(nk, "label")) {
		if label, found := scales.LookupVC(code); found {
			return label
		}
	}
	return val
}

// CellValue prepares a resolved value for a tabular cell. Structured values
// are serialized to compact JSON so they survive the flattening.
func CellValue(v interface{}) interface{} {
	switch v.(type) {
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return v
	}
}
