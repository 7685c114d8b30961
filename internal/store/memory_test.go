package store

import (
	"context"
	"errors"
	"testing"
)

func seeded(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	m.CreateTab("book", "Tasks", [][]any{
		{"Name", "Done?"},
		{"Alice", "TRUE"},
		{"Bob", ""},
	})
	return m
}

func TestMemory_ListTabs(t *testing.T) {
	m := seeded(t)
	m.CreateTab("book", "Schema", [][]any{{"Column", "Type"}})

	tabs, err := m.ListTabs(context.Background(), "book")
	if err != nil {
		t.Fatalf("ListTabs() error = %v", err)
	}
	if len(tabs) != 2 || tabs[0].Name != "Tasks" || tabs[1].Name != "Schema" {
		t.Errorf("tabs = %+v", tabs)
	}
}

func TestMemory_UnknownStore(t *testing.T) {
	m := NewMemory()
	_, err := m.ReadAll(context.Background(), "nope", "Tasks")
	if !errors.Is(err, ErrStoreNotFound) {
		t.Errorf("error = %v, want ErrStoreNotFound", err)
	}
}

func TestMemory_UnknownTab(t *testing.T) {
	m := seeded(t)
	_, err := m.ReadAll(context.Background(), "book", "Missing")
	if !errors.Is(err, ErrTabNotFound) {
		t.Errorf("error = %v, want ErrTabNotFound", err)
	}
}

func TestMemory_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	m := seeded(t)

	if err := m.AppendRow(ctx, "book", "Tasks", []any{"Carol", "FALSE"}); err != nil {
		t.Fatalf("AppendRow() error = %v", err)
	}

	rows, err := m.ReadAll(ctx, "book", "Tasks")
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[3][0] != "Carol" {
		t.Errorf("appended row = %v", rows[3])
	}
}

func TestMemory_ReadAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := seeded(t)

	rows, _ := m.ReadAll(ctx, "book", "Tasks")
	rows[1][0] = "mutated"

	again, _ := m.ReadAll(ctx, "book", "Tasks")
	if again[1][0] != "Alice" {
		t.Errorf("store contents aliased by caller mutation: %v", again[1][0])
	}
}

func TestMemory_WriteCell(t *testing.T) {
	ctx := context.Background()
	m := seeded(t)

	if err := m.WriteCell(ctx, "book", "Tasks", 2, 2, "FALSE"); err != nil {
		t.Fatalf("WriteCell() error = %v", err)
	}
	rows, _ := m.ReadAll(ctx, "book", "Tasks")
	if rows[1][1] != "FALSE" {
		t.Errorf("cell = %v, want FALSE", rows[1][1])
	}
}

func TestMemory_WriteCellGrowsTab(t *testing.T) {
	ctx := context.Background()
	m := seeded(t)

	if err := m.WriteCell(ctx, "book", "Tasks", 10, 3, "x"); err != nil {
		t.Fatalf("WriteCell() error = %v", err)
	}
	rows, _ := m.ReadAll(ctx, "book", "Tasks")
	if len(rows) != 10 {
		t.Fatalf("rows = %d, want 10", len(rows))
	}
	if rows[9][2] != "x" {
		t.Errorf("grown cell = %v", rows[9][2])
	}
}

func TestMemory_DeleteRowShiftsRows(t *testing.T) {
	ctx := context.Background()
	m := seeded(t)

	if err := m.DeleteRow(ctx, "book", "Tasks", 2); err != nil {
		t.Fatalf("DeleteRow() error = %v", err)
	}
	rows, _ := m.ReadAll(ctx, "book", "Tasks")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1][0] != "Bob" {
		t.Errorf("row 2 = %v, want Bob shifted up", rows[1])
	}
}

func TestMemory_DeleteRowOutOfRange(t *testing.T) {
	m := seeded(t)
	if err := m.DeleteRow(context.Background(), "book", "Tasks", 99); err == nil {
		t.Error("DeleteRow(99) expected error")
	}
}

func TestMemory_LastModifiedAdvances(t *testing.T) {
	ctx := context.Background()
	m := seeded(t)

	before, err := m.LastModified(ctx, "book")
	if err != nil {
		t.Fatalf("LastModified() error = %v", err)
	}
	if err := m.AppendRow(ctx, "book", "Tasks", []any{"Dana", ""}); err != nil {
		t.Fatalf("AppendRow() error = %v", err)
	}
	after, _ := m.LastModified(ctx, "book")
	if after.Before(before) {
		t.Errorf("LastModified went backwards: %v then %v", before, after)
	}
}
