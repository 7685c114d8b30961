package schema

import "strings"

// Schema-definition tab column headers. A definition tab is itself a
// tabular sheet whose first row names at least a "Column" column,
// optionally "Type" and "Key".
const (
	defColumn = "column"
	defType   = "type"
	defKey    = "key"
)

// Resolve builds the effective schema for a live header row.
//
// For each header, in priority order:
//  1. a caller-supplied override keyed by the lower-cased, trimmed header,
//  2. a matching row in the schema-definition tab contents (defTab),
//  3. inference: TypeString with the normalized header as key.
//
// The result maps the lower-cased, trimmed header text to its entry.
// Every live header receives exactly one entry; headers unknown to the
// caller schema or definition tab are never an error. A malformed
// definition tab (fewer than 2 rows, or no Column column) is ignored
// entirely and resolution falls back to inference.
func Resolve(headers []string, overrides map[string]Override, defTab [][]any) map[string]ColumnSchema {
	normOverrides := make(map[string]Override, len(overrides))
	for k, v := range overrides {
		normOverrides[strings.ToLower(strings.TrimSpace(k))] = v
	}

	def := indexDefinitionTab(defTab)

	out := make(map[string]ColumnSchema, len(headers))
	for _, h := range headers {
		lk := strings.ToLower(strings.TrimSpace(h))

		cs := ColumnSchema{
			Header: h,
			Key:    NormalizeKey(h),
			Type:   TypeString,
		}

		if ov, ok := normOverrides[lk]; ok {
			cs.Type = ParseFieldType(ov.Type)
			if ov.Key != "" {
				cs.Key = ov.Key
			}
		} else if d, ok := def[lk]; ok {
			cs.Type = ParseFieldType(d.typ)
			if d.key != "" {
				cs.Key = d.key
			}
		}

		out[lk] = cs
	}
	return out
}

type defEntry struct {
	typ string
	key string
}

// indexDefinitionTab indexes a schema-definition tab by lower-cased
// Column value. Returns nil when the tab is absent or structurally
// invalid, which callers treat as "no definition tab".
func indexDefinitionTab(rows [][]any) map[string]defEntry {
	if len(rows) < 2 {
		return nil
	}

	colIdx, typeIdx, keyIdx := -1, -1, -1
	for i, cell := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(CellText(cell))) {
		case defColumn:
			colIdx = i
		case defType:
			typeIdx = i
		case defKey:
			keyIdx = i
		}
	}
	if colIdx < 0 {
		return nil
	}

	out := make(map[string]defEntry, len(rows)-1)
	for _, row := range rows[1:] {
		if colIdx >= len(row) {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(CellText(row[colIdx])))
		if name == "" {
			continue
		}
		var e defEntry
		if typeIdx >= 0 && typeIdx < len(row) {
			e.typ = strings.TrimSpace(CellText(row[typeIdx]))
		}
		if keyIdx >= 0 && keyIdx < len(row) {
			e.key = strings.TrimSpace(CellText(row[keyIdx]))
		}
		out[name] = e
	}
	return out
}
