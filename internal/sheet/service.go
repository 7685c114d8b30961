// Package sheet implements generic CRUD over a single tabular sheet:
// headers are resolved to a column schema per request, client field names
// are mapped to columns, and cell values are coerced between stored and
// runtime form. The package holds no state across requests — every call
// re-reads the live header row.
package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/sheetapi/internal/schema"
	"github.com/JonMunkholm/sheetapi/internal/store"
)

// Service is the CRUD orchestrator. Each method is a single
// resolve-then-act transaction against the live sheet; there is no
// locking or versioning on the shared store (last write wins).
type Service struct {
	store   store.RowStore
	metrics *Metrics
}

// New creates a Service over st. metrics may be nil.
func New(st store.RowStore, metrics *Metrics) *Service {
	return &Service{store: st, metrics: metrics}
}

// Record is one data row keyed by schema keys, plus the synthetic
// "id" and "rowIndex" identity fields.
type Record map[string]any

// ListResult is the full read of a tab.
type ListResult struct {
	Rows     []Record                       `json:"rows"`
	Headers  []string                       `json:"headers"`
	Schema   map[string]schema.ColumnSchema `json:"schema"`
	Modified time.Time                      `json:"modified"`
}

// SchemaResult is the schema-introspection view of a tab.
type SchemaResult struct {
	Headers []string                       `json:"headers"`
	Schema  map[string]schema.ColumnSchema `json:"schema"`
}

// List reads every data row of the requested tab, in physical row order,
// with one coerced property per schema entry. Rows whose cells are all
// blank are omitted. No sorting or filtering happens at this layer.
func (s *Service) List(ctx context.Context, req Request) (res ListResult, err error) {
	defer func() { s.metrics.observe("list", err) }()

	sh, err := s.read(ctx, req)
	if err != nil {
		return ListResult{}, err
	}

	rows := make([]Record, 0, len(sh.rows))
	for i, row := range sh.rows[1:] {
		rowIndex := i + 2
		if blankRow(row) {
			continue
		}

		rec := Record{
			"id":       RowID(rowIndex),
			"rowIndex": rowIndex,
		}
		for col, h := range sh.headers {
			entry := sh.schema[strings.ToLower(strings.TrimSpace(h))]
			var cell any
			if col < len(row) {
				cell = row[col]
			}
			rec[entry.Key] = schema.ToRuntime(cell, entry)
		}
		rows = append(rows, rec)
	}

	modified, merr := s.store.LastModified(ctx, req.StoreID)
	if merr != nil || modified.IsZero() {
		modified = time.Now()
	}

	return ListResult{
		Rows:     rows,
		Headers:  sh.headers,
		Schema:   sh.schema,
		Modified: modified,
	}, nil
}

// Add appends one row built from fields. Field names may be header text
// (case-insensitive), a schema key, or a lower-cased schema key; fields
// matching no column — and reserved metadata names — are silently
// dropped. The appended row is always exactly as wide as the header row.
// Returns the new row's positional id.
func (s *Service) Add(ctx context.Context, req Request, fields map[string]any) (id string, err error) {
	defer func() { s.metrics.observe("add", err) }()

	sh, err := s.read(ctx, req)
	if err != nil {
		return "", err
	}

	cells := make([]any, len(sh.headers))
	for i := range cells {
		cells[i] = ""
	}
	for name, value := range fields {
		col, entry, ok := sh.columns.resolve(name)
		if !ok {
			continue
		}
		cells[col-1] = schema.ToStored(value, entry)
	}

	if err := s.store.AppendRow(ctx, req.StoreID, sh.tab, cells); err != nil {
		return "", fmt.Errorf("append row: %w", err)
	}
	return RowID(len(sh.rows) + 1), nil
}

// Update writes the resolved fields of updates into the row named by id,
// one cell at a time. Unmatched fields are dropped exactly as in Add.
// Cell writes are not atomic as a group: a failure mid-loop leaves the
// earlier cells written.
func (s *Service) Update(ctx context.Context, req Request, id string, updates map[string]any) (err error) {
	defer func() { s.metrics.observe("update", err) }()
	return s.update(ctx, req, id, updates)
}

func (s *Service) update(ctx context.Context, req Request, id string, updates map[string]any) error {
	rowIndex, err := ParseRowID(id)
	if err != nil {
		return err
	}

	sh, err := s.read(ctx, req)
	if err != nil {
		return err
	}

	for name, value := range updates {
		col, entry, ok := sh.columns.resolve(name)
		if !ok {
			continue
		}
		stored := schema.ToStored(value, entry)
		if err := s.store.WriteCell(ctx, req.StoreID, sh.tab, rowIndex, col, stored); err != nil {
			return fmt.Errorf("write cell %d,%d: %w", rowIndex, col, err)
		}
	}
	return nil
}

// UpdateWhere locates the first data row whose cell in field equals
// value — case-sensitive exact match after trimming both sides — and
// applies updates to it. Returns the matched row's id.
func (s *Service) UpdateWhere(ctx context.Context, req Request, field, value string, updates map[string]any) (id string, err error) {
	defer func() { s.metrics.observe("updateWhere", err) }()

	sh, err := s.read(ctx, req)
	if err != nil {
		return "", err
	}

	col, _, ok := sh.columns.resolve(field)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}

	want := strings.TrimSpace(value)
	for i, row := range sh.rows[1:] {
		var cell any
		if col-1 < len(row) {
			cell = row[col-1]
		}
		if strings.TrimSpace(schema.CellText(cell)) == want {
			id := RowID(i + 2)
			return id, s.update(ctx, req, id, updates)
		}
	}
	return "", fmt.Errorf("%w: %s=%q", ErrRowNotFound, field, value)
}

// Delete physically removes the row named by id. Every later row's
// identity shifts down by one.
func (s *Service) Delete(ctx context.Context, req Request, id string) (err error) {
	defer func() { s.metrics.observe("delete", err) }()

	rowIndex, err := ParseRowID(id)
	if err != nil {
		return err
	}

	tab, err := s.resolveTab(ctx, req.StoreID, req.Tab)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRow(ctx, req.StoreID, tab, rowIndex); err != nil {
		return fmt.Errorf("delete row %d: %w", rowIndex, err)
	}
	return nil
}

// ExportManifest re-keys the tab's records by the value of keyField,
// dropping the identity fields and the key field itself from each value.
// Duplicate key values are not an error; the later row wins.
func (s *Service) ExportManifest(ctx context.Context, req Request, keyField string) (out map[string]Record, err error) {
	defer func() { s.metrics.observe("export", err) }()

	res, err := s.List(ctx, req)
	if err != nil {
		return nil, err
	}

	key, ok := manifestKey(res.Schema, keyField)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, keyField)
	}

	out = make(map[string]Record, len(res.Rows))
	for _, rec := range res.Rows {
		k := strings.TrimSpace(schema.CellText(rec[key]))
		if k == "" {
			continue
		}
		entry := make(Record, len(rec))
		for f, v := range rec {
			if f == "id" || f == "rowIndex" || f == key {
				continue
			}
			entry[f] = v
		}
		out[k] = entry
	}
	return out, nil
}

// Schema resolves and returns the effective column schema without
// reading data rows into records.
func (s *Service) Schema(ctx context.Context, req Request) (res SchemaResult, err error) {
	defer func() { s.metrics.observe("schema", err) }()

	sh, err := s.read(ctx, req)
	if err != nil {
		return SchemaResult{}, err
	}
	return SchemaResult{Headers: sh.headers, Schema: sh.schema}, nil
}

// sheetView is the per-request resolution of one tab: its raw rows,
// header text, effective schema, and field-to-column index.
type sheetView struct {
	tab     string
	rows    [][]any
	headers []string
	schema  map[string]schema.ColumnSchema
	columns *columnIndex
}

// read performs the resolve phase shared by every operation.
func (s *Service) read(ctx context.Context, req Request) (*sheetView, error) {
	if req.StoreID == "" {
		return nil, ErrNoStore
	}

	tab, err := s.resolveTab(ctx, req.StoreID, req.Tab)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ReadAll(ctx, req.StoreID, tab)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", tab, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoHeader, tab)
	}

	headers := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		headers[i] = schema.CellText(cell)
	}

	defTab := s.readSchemaTab(ctx, req)
	schemaMap := schema.Resolve(headers, req.Schema, defTab)

	return &sheetView{
		tab:     tab,
		rows:    rows,
		headers: headers,
		schema:  schemaMap,
		columns: newColumnIndex(headers, schemaMap),
	}, nil
}

// resolveTab maps a caller-given tab identifier (name or numeric id) to
// a tab name. An unknown identifier falls back to the first tab; only a
// store with no tabs at all is an error.
func (s *Service) resolveTab(ctx context.Context, storeID, tabID string) (string, error) {
	if storeID == "" {
		return "", ErrNoStore
	}

	tabs, err := s.store.ListTabs(ctx, storeID)
	if err != nil {
		return "", fmt.Errorf("list tabs: %w", err)
	}
	if len(tabs) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoTabs, storeID)
	}
	if tabID == "" {
		return tabs[0].Name, nil
	}

	for _, t := range tabs {
		if strings.EqualFold(t.Name, tabID) {
			return t.Name, nil
		}
	}
	if n, err := strconv.Atoi(tabID); err == nil {
		for _, t := range tabs {
			if t.ID == n {
				return t.Name, nil
			}
		}
	}
	return tabs[0].Name, nil
}

// readSchemaTab reads the configured schema-definition tab. Any failure
// here is recovered by returning nil, which resolves every header by
// inference instead; it is never surfaced to the caller.
func (s *Service) readSchemaTab(ctx context.Context, req Request) [][]any {
	if req.SchemaTab == "" {
		return nil
	}

	tab, err := s.resolveTab(ctx, req.StoreID, req.SchemaTab)
	if err != nil {
		slog.Debug("schema tab unavailable, using inference",
			"schema_tab", req.SchemaTab, "error", err)
		return nil
	}
	rows, err := s.store.ReadAll(ctx, req.StoreID, tab)
	if err != nil {
		slog.Debug("schema tab unreadable, using inference",
			"schema_tab", tab, "error", err)
		return nil
	}
	return rows
}

// blankRow reports whether every cell renders as empty text. Blank rows
// keep their physical position (identity is positional) but are omitted
// from list results.
func blankRow(row []any) bool {
	for _, cell := range row {
		if strings.TrimSpace(schema.CellText(cell)) != "" {
			return false
		}
	}
	return true
}

// manifestKey resolves the caller-designated export key field against
// the effective schema: by schema key, by header text, or by the
// normalized form of the field name.
func manifestKey(schemaMap map[string]schema.ColumnSchema, keyField string) (string, bool) {
	trimmed := strings.TrimSpace(keyField)
	lower := strings.ToLower(trimmed)

	for header, entry := range schemaMap {
		if entry.Key == trimmed || header == lower {
			return entry.Key, true
		}
	}
	norm := schema.NormalizeKey(keyField)
	for _, entry := range schemaMap {
		if entry.Key == norm {
			return entry.Key, true
		}
	}
	return "", false
}
