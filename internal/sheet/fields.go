package sheet

import (
	"strings"

	"github.com/JonMunkholm/sheetapi/internal/schema"
)

// reservedFields are request metadata names that never map to a column,
// even when a header coincidentally shares the name. Compared after
// lower-casing.
var reservedFields = map[string]struct{}{
	"id":          {},
	"rowid":       {},
	"rowindex":    {},
	"row_id":      {},
	"action":      {},
	"config":      {},
	"schema":      {},
	"storeid":     {},
	"tabid":       {},
	"schematabid": {},
}

// columnIndex resolves client-supplied field names to column positions.
//
// Lookup priority per field: exact case-insensitive header match, then
// schema-key match, then lower-cased schema-key match. When two headers
// collide on the same canonical key the later column (left to right)
// wins key-based lookups; header-based lookups are unaffected.
type columnIndex struct {
	entries    []schema.ColumnSchema // by 0-based column
	byHeader   map[string]int        // lower-cased header -> 1-based column
	byKey      map[string]int
	byLowerKey map[string]int
}

func newColumnIndex(headers []string, schemaMap map[string]schema.ColumnSchema) *columnIndex {
	ci := &columnIndex{
		entries:    make([]schema.ColumnSchema, len(headers)),
		byHeader:   make(map[string]int, len(headers)),
		byKey:      make(map[string]int, len(headers)),
		byLowerKey: make(map[string]int, len(headers)),
	}

	for i, h := range headers {
		lk := strings.ToLower(strings.TrimSpace(h))
		entry, ok := schemaMap[lk]
		if !ok {
			entry = schema.ColumnSchema{Header: h, Key: schema.NormalizeKey(h), Type: schema.TypeString}
		}
		col := i + 1

		ci.entries[i] = entry
		ci.byHeader[lk] = col
		// Iterating left to right means a duplicate key lands on the
		// rightmost column, which is the documented tie-break.
		if entry.Key != "" {
			ci.byKey[entry.Key] = col
			ci.byLowerKey[strings.ToLower(entry.Key)] = col
		}
	}
	return ci
}

// resolve maps a field name to its 1-based column and schema entry.
// Reserved metadata names and unmatched fields report ok=false; callers
// silently drop them rather than erroring.
func (ci *columnIndex) resolve(field string) (int, schema.ColumnSchema, bool) {
	trimmed := strings.TrimSpace(field)
	lower := strings.ToLower(trimmed)

	if _, reserved := reservedFields[lower]; reserved {
		return 0, schema.ColumnSchema{}, false
	}

	if col, ok := ci.byHeader[lower]; ok {
		return col, ci.entries[col-1], true
	}
	if col, ok := ci.byKey[trimmed]; ok {
		return col, ci.entries[col-1], true
	}
	if col, ok := ci.byLowerKey[lower]; ok {
		return col, ci.entries[col-1], true
	}
	return 0, schema.ColumnSchema{}, false
}
