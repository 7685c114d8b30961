package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// debugEntry is one client-submitted debug-log record, stamped with a
// server-side id and receipt time.
type debugEntry struct {
	ID       string `json:"id"`
	Received string `json:"received"`
	Level    string `json:"level"`
	Message  string `json:"message"`
	Source   string `json:"source,omitempty"`
	Context  any    `json:"context,omitempty"`
}

// debugLog is a fixed-capacity in-memory ring of client debug entries.
// When full, the oldest entries fall off. It exists so a support person
// can pull recent client-side events without access to the client.
type debugLog struct {
	mu      sync.Mutex
	entries []debugEntry
	max     int
}

func newDebugLog(max int) *debugLog {
	if max <= 0 {
		max = 200
	}
	return &debugLog{max: max}
}

func (d *debugLog) add(e debugEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, e)
	if len(d.entries) > d.max {
		d.entries = d.entries[len(d.entries)-d.max:]
	}
}

// list returns a copy of the current entries, oldest first.
func (d *debugLog) list() []debugEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]debugEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// handleDebugLogSubmit accepts one entry or an array of entries.
func (s *Server) handleDebugLogSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "REQ001", "invalid debug-log payload")
		return
	}

	var batch []debugEntry
	if err := json.Unmarshal(body, &batch); err != nil {
		var one debugEntry
		if err := json.Unmarshal(body, &one); err != nil {
			writeFailure(w, http.StatusBadRequest, "REQ001", "invalid debug-log payload")
			return
		}
		batch = []debugEntry{one}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i := range batch {
		batch[i].ID = uuid.NewString()
		batch[i].Received = now
		s.debug.add(batch[i])
		slog.Debug("client debug log",
			"level", batch[i].Level,
			"source", batch[i].Source,
			"message", batch[i].Message)
	}
	writeData(w, map[string]int{"accepted": len(batch)})
}

func (s *Server) handleDebugLogList(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.debug.list())
}
