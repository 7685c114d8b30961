package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSX is a RowStore over .xlsx workbooks in a local directory. A store
// id resolves to <dir>/<id>.xlsx. Every operation opens the workbook,
// applies the change, and saves; requests share no open file handles.
//
// A per-file mutex serializes writes within this process so concurrent
// requests cannot corrupt the workbook file itself. That is a file-level
// guarantee only — row-level races across requests remain the caller's
// problem, exactly as with a remote spreadsheet backend.
type XLSX struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewXLSX creates an xlsx-backed store rooted at dir.
func NewXLSX(dir string) *XLSX {
	return &XLSX{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// ListTabs implements RowStore.
func (x *XLSX) ListTabs(_ context.Context, storeID string) ([]Tab, error) {
	f, err := x.open(storeID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tabs []Tab
	for _, name := range f.GetSheetList() {
		id, err := f.GetSheetIndex(name)
		if err != nil {
			return nil, fmt.Errorf("sheet index for %q: %w", name, err)
		}
		tabs = append(tabs, Tab{Name: name, ID: id})
	}
	return tabs, nil
}

// ReadAll implements RowStore.
func (x *XLSX) ReadAll(_ context.Context, storeID, tab string) ([][]any, error) {
	f, err := x.open(storeID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(tab)
	if err != nil {
		return nil, tabErr(tab, err)
	}

	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out, nil
}

// AppendRow implements RowStore.
func (x *XLSX) AppendRow(_ context.Context, storeID, tab string, cells []any) error {
	unlock := x.lock(storeID)
	defer unlock()

	f, err := x.open(storeID)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(tab)
	if err != nil {
		return tabErr(tab, err)
	}

	next := len(rows) + 1
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, next)
		if err != nil {
			return fmt.Errorf("append row: %w", err)
		}
		if err := f.SetCellValue(tab, cell, v); err != nil {
			return tabErr(tab, err)
		}
	}
	return f.Save()
}

// WriteCell implements RowStore.
func (x *XLSX) WriteCell(_ context.Context, storeID, tab string, row, col int, value any) error {
	unlock := x.lock(storeID)
	defer unlock()

	f, err := x.open(storeID)
	if err != nil {
		return err
	}
	defer f.Close()

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("write cell: %w", err)
	}
	if err := f.SetCellValue(tab, cell, value); err != nil {
		return tabErr(tab, err)
	}
	return f.Save()
}

// DeleteRow implements RowStore.
func (x *XLSX) DeleteRow(_ context.Context, storeID, tab string, row int) error {
	unlock := x.lock(storeID)
	defer unlock()

	f, err := x.open(storeID)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.RemoveRow(tab, row); err != nil {
		return tabErr(tab, err)
	}
	return f.Save()
}

// LastModified implements RowStore using the workbook file's mtime.
func (x *XLSX) LastModified(_ context.Context, storeID string) (time.Time, error) {
	path, err := x.path(storeID)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, fmt.Errorf("%w: %q", ErrStoreNotFound, storeID)
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (x *XLSX) open(storeID string) (*excelize.File, error) {
	path, err := x.path(storeID)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrStoreNotFound, storeID)
		}
		return nil, fmt.Errorf("open workbook %q: %w", storeID, err)
	}
	return f, nil
}

// path maps a store id to its workbook file, rejecting ids that would
// escape the configured directory.
func (x *XLSX) path(storeID string) (string, error) {
	if storeID == "" || strings.ContainsAny(storeID, `/\`) || strings.Contains(storeID, "..") {
		return "", fmt.Errorf("%w: invalid store id %q", ErrStoreNotFound, storeID)
	}
	return filepath.Join(x.dir, storeID+".xlsx"), nil
}

func (x *XLSX) lock(storeID string) func() {
	x.mu.Lock()
	l, ok := x.locks[storeID]
	if !ok {
		l = &sync.Mutex{}
		x.locks[storeID] = l
	}
	x.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func tabErr(tab string, err error) error {
	if strings.Contains(err.Error(), "doesn't exist") {
		return fmt.Errorf("%w: %q", ErrTabNotFound, tab)
	}
	return err
}
