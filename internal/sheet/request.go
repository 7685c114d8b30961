package sheet

import "github.com/JonMunkholm/sheetapi/internal/schema"

// Request identifies the sheet a single operation runs against, plus any
// caller-supplied schema. A Request is assembled once per call by merging
// compiled-in defaults, a named preset, and the caller's own values, and
// is never mutated afterwards — there is no process-wide mutable
// configuration.
type Request struct {
	// StoreID names the backing workbook. Required after merging.
	StoreID string

	// Tab is a tab name or numeric tab id. Blank selects the first tab.
	Tab string

	// SchemaTab optionally names a schema-definition tab.
	SchemaTab string

	// Schema holds caller-supplied column overrides keyed by header text.
	Schema map[string]schema.Override
}

// Merge layers over on top of r, returning the combined request. Scalar
// fields from over win when non-empty; schema overrides are merged with
// over's entries taking precedence per header.
func (r Request) Merge(over Request) Request {
	out := r
	if over.StoreID != "" {
		out.StoreID = over.StoreID
	}
	if over.Tab != "" {
		out.Tab = over.Tab
	}
	if over.SchemaTab != "" {
		out.SchemaTab = over.SchemaTab
	}
	if len(over.Schema) > 0 {
		merged := make(map[string]schema.Override, len(r.Schema)+len(over.Schema))
		for k, v := range r.Schema {
			merged[k] = v
		}
		for k, v := range over.Schema {
			merged[k] = v
		}
		out.Schema = merged
	}
	return out
}
