package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JonMunkholm/sheetapi/internal/config"
	"github.com/JonMunkholm/sheetapi/internal/sheet"
	"github.com/JonMunkholm/sheetapi/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	mem.CreateTab("book1", "Checklist", [][]any{
		{"Number", "Task Description", "Done?", "Hours"},
		{"1.1", "Install panel", "FALSE", "2.5"},
		{"1.2", "Wire breaker", "TRUE", "4"},
	})
	mem.CreateTab("book1", "Schema", [][]any{
		{"Column", "Type", "Key"},
		{"Done?", "boolean", ""},
		{"Hours", "number", ""},
	})

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Store.DefaultStoreID = "book1"
	cfg.Store.DefaultSchemaTabID = "Schema"
	cfg.Debug.LogBuffer = 3
	cfg.Rate.Enabled = false

	presets := map[string]config.Preset{
		"checklist": {StoreID: "book1", TabID: "Checklist"},
	}

	svc := sheet.New(mem, nil)
	return NewServer(svc, cfg, presets), mem
}

func doJSON(t *testing.T, srv *Server, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
		"body: %s", rec.Body.String())
	return rec, decoded
}

func TestGetData(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getData",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	rows := data["rows"].([]any)
	require.Len(t, rows, 2)

	first := rows[0].(map[string]any)
	assert.Equal(t, "row-2", first["id"])
	assert.Equal(t, float64(2), first["rowIndex"])
	assert.Equal(t, "Install panel", first["taskDescription"])
	assert.Equal(t, false, first["done"])
	assert.Equal(t, 2.5, first["hours"])
}

func TestGetDataViaQueryParams(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodGet,
		"/api?action=getRows&storeId=book1&tabId=Checklist", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
}

func TestLegacyAliases(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, action := range []string{"getTasks", "getRows", "getSequences", "getRSVPs"} {
		rec, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
			"action": action,
		})
		require.Equal(t, http.StatusOK, rec.Code, "action %s", action)
		assert.Equal(t, true, body["success"], "action %s", action)
	}
}

func TestAddUpdateDeleteFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action":           "addRow",
		"number":           "1.3",
		"Task Description": "Test circuits",
		"done":             true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	id := body["data"].(map[string]any)["id"].(string)
	assert.Equal(t, "row-4", id)

	rec, body = doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "updateRow",
		"id":     id,
		"hours":  8,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])

	rec, body = doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getData",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rows := body["data"].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 3)
	added := rows[2].(map[string]any)
	assert.Equal(t, "Test circuits", added["taskDescription"])
	assert.Equal(t, true, added["done"])
	assert.Equal(t, float64(8), added["hours"])

	rec, body = doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "deleteRow",
		"id":     id,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])

	_, body = doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getData",
	})
	rows = body["data"].(map[string]any)["rows"].([]any)
	assert.Len(t, rows, 2)
}

func TestUpdateByMatchField(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action":     "updateRow",
		"matchField": "number",
		"matchValue": "1.2",
		"hours":      5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	assert.Equal(t, "row-3", body["data"].(map[string]any)["id"])
}

func TestPresetResolution(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getData",
		"config": "checklist",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getData",
		"config": "nope",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "CFG004", body["code"])
}

func TestCallerSchemaOverride(t *testing.T) {
	srv, _ := newTestServer(t)

	_, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getData",
		"schema": map[string]any{
			"Hours": map[string]any{"type": "integer"},
		},
	})
	rows := body["data"].(map[string]any)["rows"].([]any)
	first := rows[0].(map[string]any)
	assert.Equal(t, float64(2), first["hours"], "2.5 truncates under integer override")
}

func TestGetSchema(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getSchema",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	headers := data["headers"].([]any)
	assert.Equal(t, []any{"Number", "Task Description", "Done?", "Hours"}, headers)

	schemaMap := data["schema"].(map[string]any)
	done := schemaMap["done?"].(map[string]any)
	assert.Equal(t, "boolean", done["type"])
	assert.Equal(t, "done", done["key"])
}

func TestErrorEnvelopes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name    string
		payload map[string]any
		status  int
		code    string
	}{
		{
			name:    "missing action",
			payload: map[string]any{},
			status:  http.StatusBadRequest,
			code:    "REQ002",
		},
		{
			name:    "unknown action",
			payload: map[string]any{"action": "mystery"},
			status:  http.StatusBadRequest,
			code:    "REQ002",
		},
		{
			name:    "invalid row id",
			payload: map[string]any{"action": "deleteRow", "id": "abc"},
			status:  http.StatusBadRequest,
			code:    "ID001",
		},
		{
			name:    "row not found by match",
			payload: map[string]any{"action": "updateRow", "matchField": "number", "matchValue": "9.9", "hours": 1},
			status:  http.StatusNotFound,
			code:    "ROW001",
		},
		{
			name:    "unknown match field",
			payload: map[string]any{"action": "updateRow", "matchField": "ghost", "matchValue": "x"},
			status:  http.StatusNotFound,
			code:    "FLD001",
		},
		{
			name:    "unknown store",
			payload: map[string]any{"action": "getData", "storeId": "missing"},
			status:  http.StatusInternalServerError,
			code:    "STORE001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, srv, http.MethodPost, "/api", tt.payload)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestExportManifest(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getManifest",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	require.Contains(t, data, "1.1")
	entry := data["1.1"].(map[string]any)
	assert.Equal(t, "Install panel", entry["taskDescription"])
	assert.NotContains(t, entry, "id")
	assert.NotContains(t, entry, "number")
}

func TestMissingStoreID(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.cfg.Store.DefaultStoreID = ""

	rec, body := doJSON(t, srv, http.MethodPost, "/api", map[string]any{
		"action": "getData",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CFG001", body["code"])
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestDebugLogRing(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 5; i++ {
		rec, body := doJSON(t, srv, http.MethodPost, "/debug-log", map[string]any{
			"level":   "error",
			"message": fmt.Sprintf("event %d", i),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), body["data"].(map[string]any)["accepted"])
	}

	rec, body := doJSON(t, srv, http.MethodGet, "/debug-log", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := body["data"].([]any)
	require.Len(t, entries, 3, "ring capped at configured buffer size")
	oldest := entries[0].(map[string]any)
	assert.Equal(t, "event 2", oldest["message"])
	assert.NotEmpty(t, oldest["id"])
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("5.6.7.8"), "independent bucket per IP")
}
