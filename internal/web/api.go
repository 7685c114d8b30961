package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/sheetapi/internal/schema"
	"github.com/JonMunkholm/sheetapi/internal/sheet"
)

// apiEnvelope is the typed portion of an API request. Any body or query
// members not named here are treated as data fields for the operation.
type apiEnvelope struct {
	Action      string                     `json:"action"`
	Config      string                     `json:"config"`
	StoreID     string                     `json:"storeId"`
	TabID       string                     `json:"tabId"`
	SchemaTabID string                     `json:"schemaTabId"`
	Schema      map[string]schema.Override `json:"schema"`
	ID          string                     `json:"id"`
	RowID       string                     `json:"rowId"`
	MatchField  string                     `json:"matchField"`
	MatchValue  string                     `json:"matchValue"`
	KeyField    string                     `json:"keyField"`
}

// envelopeKeys are the member names consumed by the envelope itself,
// removed from the decoded body before the remainder is handed to the
// service as data fields.
var envelopeKeys = []string{
	"action", "config", "storeId", "tabId", "schemaTabId", "schema",
	"id", "rowId", "matchField", "matchValue", "keyField",
	// out-of-scope side channel accepted and ignored for old clients
	"uploadFolderId",
}

// actionAliases maps legacy per-domain action names onto the generic
// operations. Old clients were written against domain-specific verbs;
// they all behave identically once field names resolve through the
// schema.
var actionAliases = map[string]string{
	"getTasks":       "getData",
	"getRows":        "getData",
	"getSequences":   "getData",
	"getRSVPs":       "getData",
	"addTask":        "addRow",
	"addSequence":    "addRow",
	"addRSVP":        "addRow",
	"updateTask":     "updateRow",
	"updateSequence": "updateRow",
	"updateRSVP":     "updateRow",
	"deleteTask":     "deleteRow",
	"getManifest":    "exportManifest",
}

// handleAPI decodes the request envelope from either a JSON body (POST)
// or query parameters (GET) and dispatches the named action.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	var (
		env    apiEnvelope
		fields map[string]any
		err    error
	)
	switch r.Method {
	case http.MethodPost:
		env, fields, err = decodeBody(r)
	default:
		env, fields, err = decodeQuery(r)
	}
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "REQ001", err.Error())
		return
	}

	req, ok := s.buildRequest(w, env)
	if !ok {
		return
	}

	action := env.Action
	if generic, ok := actionAliases[action]; ok {
		action = generic
	}

	ctx := r.Context()
	switch action {
	case "getData":
		res, err := s.service.List(ctx, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, res)

	case "getSchema":
		res, err := s.service.Schema(ctx, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, res)

	case "addRow":
		id, err := s.service.Add(ctx, req, fields)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, map[string]string{"id": id})

	case "updateRow":
		id := env.ID
		if id == "" {
			id = env.RowID
		}
		if id == "" && env.MatchField != "" {
			matched, err := s.service.UpdateWhere(ctx, req, env.MatchField, env.MatchValue, fields)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeData(w, map[string]string{"id": matched})
			return
		}
		if err := s.service.Update(ctx, req, id, fields); err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, map[string]string{"id": id})

	case "deleteRow":
		id := env.ID
		if id == "" {
			id = env.RowID
		}
		if err := s.service.Delete(ctx, req, id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, map[string]string{"id": id})

	case "exportManifest":
		keyField := env.KeyField
		if keyField == "" {
			keyField = "number"
		}
		res, err := s.service.ExportManifest(ctx, req, keyField)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, res)

	case "":
		writeFailure(w, http.StatusBadRequest, "REQ002", "missing action")

	default:
		writeFailure(w, http.StatusBadRequest, "REQ002",
			fmt.Sprintf("unknown action %q", env.Action))
	}
}

// buildRequest layers the sheet request: compiled-in defaults, then the
// named preset, then the caller's identifiers. An unknown preset name is
// a caller error, not a silent fallback.
func (s *Server) buildRequest(w http.ResponseWriter, env apiEnvelope) (sheet.Request, bool) {
	req := sheet.Request{
		StoreID:   s.cfg.Store.DefaultStoreID,
		Tab:       s.cfg.Store.DefaultTabID,
		SchemaTab: s.cfg.Store.DefaultSchemaTabID,
	}

	if env.Config != "" {
		preset, ok := s.presets[env.Config]
		if !ok {
			writeFailure(w, http.StatusBadRequest, "CFG004",
				fmt.Sprintf("unknown config %q", env.Config))
			return sheet.Request{}, false
		}
		req = req.Merge(sheet.Request{
			StoreID:   preset.StoreID,
			Tab:       preset.TabID,
			SchemaTab: preset.SchemaTabID,
		})
	}

	return req.Merge(sheet.Request{
		StoreID:   env.StoreID,
		Tab:       env.TabID,
		SchemaTab: env.SchemaTabID,
		Schema:    env.Schema,
	}), true
}

// decodeBody reads the JSON body once and decodes it twice: into the
// typed envelope, and into a raw map whose leftover members become the
// operation's data fields.
func decodeBody(r *http.Request) (apiEnvelope, map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apiEnvelope{}, nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return apiEnvelope{}, nil, fmt.Errorf("empty request body")
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return apiEnvelope{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return apiEnvelope{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	for _, k := range envelopeKeys {
		delete(fields, k)
	}
	return env, fields, nil
}

// decodeQuery builds the envelope from query parameters. Leftover
// parameters become string-valued data fields; a "schema" parameter
// carries the override map as a JSON object.
func decodeQuery(r *http.Request) (apiEnvelope, map[string]any, error) {
	q := r.URL.Query()
	env := apiEnvelope{
		Action:      q.Get("action"),
		Config:      q.Get("config"),
		StoreID:     q.Get("storeId"),
		TabID:       q.Get("tabId"),
		SchemaTabID: q.Get("schemaTabId"),
		ID:          q.Get("id"),
		RowID:       q.Get("rowId"),
		MatchField:  q.Get("matchField"),
		MatchValue:  q.Get("matchValue"),
		KeyField:    q.Get("keyField"),
	}

	if raw := q.Get("schema"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &env.Schema); err != nil {
			return apiEnvelope{}, nil, fmt.Errorf("invalid schema parameter: %w", err)
		}
	}

	fields := map[string]any{}
	for name, values := range q {
		if isEnvelopeKey(name) || len(values) == 0 {
			continue
		}
		fields[name] = values[0]
	}
	return env, fields, nil
}

func isEnvelopeKey(name string) bool {
	for _, k := range envelopeKeys {
		if strings.EqualFold(name, k) {
			return true
		}
	}
	return false
}
