package sheet

// errors.go defines the error taxonomy for sheet operations and maps
// internal errors to user-facing messages with support codes.
//
// Error codes are grouped by category:
//
//	CFG001 - No store id: the request named no store and no preset supplied one
//	CFG002 - No tabs: the store exists but contains no sheets
//	CFG003 - No header row: the tab is empty so columns cannot be resolved
//	ID001  - Invalid row id: the id is not "row-<N>" with N pointing past the header
//	ROW001 - Row not found: no row matched the requested field value
//	FLD001 - Field not found: a match/export field resolved to no column
//	STORE001 - Store failure: the underlying spreadsheet call failed
//
// Schema-definition tab problems never appear here; they are recovered
// by falling back to inferred schemas (see internal/schema).

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNoStore indicates the request resolved to no store id.
	ErrNoStore = errors.New("no store id configured")

	// ErrNoTabs indicates the store contains no sheets at all.
	ErrNoTabs = errors.New("store has no tabs")

	// ErrNoHeader indicates the tab has no header row to resolve columns from.
	ErrNoHeader = errors.New("tab has no header row")

	// ErrInvalidRowID indicates a row id that does not parse to a data row.
	ErrInvalidRowID = errors.New("invalid row id")

	// ErrRowNotFound indicates no row matched a field-value lookup.
	ErrRowNotFound = errors.New("row not found")

	// ErrFieldNotFound indicates a named field resolved to no column.
	ErrFieldNotFound = errors.New("field not found")
)

// UserMessage is the client-facing rendering of an error.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MapError translates an operation error into a UserMessage. Unrecognized
// errors are treated as upstream store failures with the cause attached.
func MapError(err error) UserMessage {
	switch {
	case errors.Is(err, ErrNoStore):
		return UserMessage{Code: "CFG001", Message: "No store id was provided; pass storeId or name a preset"}
	case errors.Is(err, ErrNoTabs):
		return UserMessage{Code: "CFG002", Message: "The store has no tabs"}
	case errors.Is(err, ErrNoHeader):
		return UserMessage{Code: "CFG003", Message: "The tab has no header row"}
	case errors.Is(err, ErrInvalidRowID):
		return UserMessage{Code: "ID001", Message: "Row ids look like row-2, row-3, … and must point past the header row"}
	case errors.Is(err, ErrRowNotFound):
		return UserMessage{Code: "ROW001", Message: "No row matched the requested value"}
	case errors.Is(err, ErrFieldNotFound):
		return UserMessage{Code: "FLD001", Message: "The named field does not match any column"}
	default:
		return UserMessage{Code: "STORE001", Message: "Store operation failed: " + err.Error()}
	}
}

// ParseRowID extracts the 1-based sheet row index from a "row-<N>" id.
// N must point past the header row (N >= 2). Row identity is positional:
// deleting a row shifts every later id down by one, so ids must not be
// cached across deletes.
func ParseRowID(id string) (int, error) {
	rest, ok := strings.CutPrefix(id, "row-")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRowID, id)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRowID, id)
	}
	return n, nil
}

// RowID formats the positional id for a 1-based sheet row index.
func RowID(rowIndex int) string {
	return "row-" + strconv.Itoa(rowIndex)
}
