package sheet

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseRowID(t *testing.T) {
	tests := []struct {
		id      string
		want    int
		wantErr bool
	}{
		{id: "row-2", want: 2},
		{id: "row-3", want: 3},
		{id: "row-100", want: 100},
		{id: "row-1", wantErr: true},  // header row
		{id: "row-0", wantErr: true},
		{id: "row--1", wantErr: true},
		{id: "row-", wantErr: true},
		{id: "row-abc", wantErr: true},
		{id: "2", wantErr: true},
		{id: "", wantErr: true},
		{id: "rows-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseRowID(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRowID) {
					t.Errorf("ParseRowID(%q) error = %v, want ErrInvalidRowID", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRowID(%q) error = %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("ParseRowID(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestRowID_RoundTrip(t *testing.T) {
	for _, n := range []int{2, 3, 42} {
		got, err := ParseRowID(RowID(n))
		if err != nil || got != n {
			t.Errorf("round trip of %d: got %d, err %v", n, got, err)
		}
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "no store", err: ErrNoStore, wantCode: "CFG001"},
		{name: "no tabs", err: fmt.Errorf("context: %w", ErrNoTabs), wantCode: "CFG002"},
		{name: "no header", err: ErrNoHeader, wantCode: "CFG003"},
		{name: "invalid id", err: fmt.Errorf("%w: %q", ErrInvalidRowID, "x"), wantCode: "ID001"},
		{name: "row not found", err: ErrRowNotFound, wantCode: "ROW001"},
		{name: "field not found", err: ErrFieldNotFound, wantCode: "FLD001"},
		{name: "upstream failure", err: errors.New("quota exceeded"), wantCode: "STORE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			if msg.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, msg.Code, tt.wantCode)
			}
			if msg.Message == "" {
				t.Error("empty user message")
			}
		})
	}
}
