package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process RowStore. It backs the "memory" driver for
// ephemeral serving and doubles as the test store for the CRUD layer.
type Memory struct {
	mu     sync.RWMutex
	stores map[string]*memStore
}

type memStore struct {
	tabs     []Tab
	data     map[string][][]any
	modified time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{stores: make(map[string]*memStore)}
}

// CreateTab creates (or replaces) a tab in storeID with the given rows,
// creating the store itself on first use. Rows are copied.
func (m *Memory) CreateTab(storeID, tab string, rows [][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stores[storeID]
	if !ok {
		st = &memStore{data: make(map[string][][]any)}
		m.stores[storeID] = st
	}

	if _, exists := st.data[tab]; !exists {
		st.tabs = append(st.tabs, Tab{Name: tab, ID: len(st.tabs)})
	}
	st.data[tab] = copyRows(rows)
	st.modified = time.Now()
}

// ListTabs implements RowStore.
func (m *Memory) ListTabs(_ context.Context, storeID string) ([]Tab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, err := m.store(storeID)
	if err != nil {
		return nil, err
	}
	out := make([]Tab, len(st.tabs))
	copy(out, st.tabs)
	return out, nil
}

// ReadAll implements RowStore.
func (m *Memory) ReadAll(_ context.Context, storeID, tab string) ([][]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, err := m.rows(storeID, tab)
	if err != nil {
		return nil, err
	}
	return copyRows(rows), nil
}

// AppendRow implements RowStore.
func (m *Memory) AppendRow(_ context.Context, storeID, tab string, cells []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(storeID, tab)
	if err != nil {
		return err
	}
	row := make([]any, len(cells))
	copy(row, cells)
	m.stores[storeID].data[tab] = append(rows, row)
	m.stores[storeID].modified = time.Now()
	return nil
}

// WriteCell implements RowStore. Writing past the current extent grows
// the tab, matching spreadsheet range semantics.
func (m *Memory) WriteCell(_ context.Context, storeID, tab string, row, col int, value any) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("write cell: position %d,%d out of range", row, col)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(storeID, tab)
	if err != nil {
		return err
	}

	for len(rows) < row {
		rows = append(rows, nil)
	}
	r := rows[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	rows[row-1] = r

	m.stores[storeID].data[tab] = rows
	m.stores[storeID].modified = time.Now()
	return nil
}

// DeleteRow implements RowStore.
func (m *Memory) DeleteRow(_ context.Context, storeID, tab string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(storeID, tab)
	if err != nil {
		return err
	}
	if row < 1 || row > len(rows) {
		return fmt.Errorf("delete row: row %d out of range", row)
	}

	m.stores[storeID].data[tab] = append(rows[:row-1], rows[row:]...)
	m.stores[storeID].modified = time.Now()
	return nil
}

// LastModified implements RowStore.
func (m *Memory) LastModified(_ context.Context, storeID string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, err := m.store(storeID)
	if err != nil {
		return time.Time{}, err
	}
	return st.modified, nil
}

func (m *Memory) store(storeID string) (*memStore, error) {
	st, ok := m.stores[storeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStoreNotFound, storeID)
	}
	return st, nil
}

func (m *Memory) rows(storeID, tab string) ([][]any, error) {
	st, err := m.store(storeID)
	if err != nil {
		return nil, err
	}
	rows, ok := st.data[tab]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTabNotFound, tab)
	}
	return rows, nil
}

func copyRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = make([]any, len(r))
		copy(out[i], r)
	}
	return out
}
