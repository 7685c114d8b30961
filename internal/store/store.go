// Package store defines the row-store contract over a tabular backend
// and provides two drivers: an excelize-backed .xlsx driver and an
// in-memory driver for ephemeral serving and tests.
//
// Addressing is 1-based for both rows and columns; the header row is
// always row 1. Every call is a complete read-or-write against the
// backend — no driver holds open state between calls.
package store

import (
	"context"
	"errors"
	"time"
)

// Tab identifies a single sheet within a store.
type Tab struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// RowStore is the adapter the CRUD layer runs against.
type RowStore interface {
	// ListTabs enumerates the sheets of a store in their native order.
	ListTabs(ctx context.Context, storeID string) ([]Tab, error)

	// ReadAll returns the full contents of a tab, first row included.
	// Rows may be ragged; callers must bounds-check column access.
	ReadAll(ctx context.Context, storeID, tab string) ([][]any, error)

	// AppendRow adds cells as the new last row of the tab.
	AppendRow(ctx context.Context, storeID, tab string, cells []any) error

	// WriteCell sets a single cell at the 1-based row/column position.
	WriteCell(ctx context.Context, storeID, tab string, row, col int, value any) error

	// DeleteRow physically removes the 1-based row, shifting later rows up.
	DeleteRow(ctx context.Context, storeID, tab string, row int) error

	// LastModified reports when the store's backing file last changed.
	LastModified(ctx context.Context, storeID string) (time.Time, error)
}

// ErrStoreNotFound indicates the store id does not resolve to a backing file.
var ErrStoreNotFound = errors.New("store not found")

// ErrTabNotFound indicates the named tab does not exist in the store.
var ErrTabNotFound = errors.New("tab not found")
