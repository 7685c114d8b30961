package schema

// coerce.go converts cell values between their stored (spreadsheet) and
// runtime (typed) representations.
//
// These functions handle the messy reality of user-maintained sheets:
// checkmarks and "yes"/"done" for booleans, half-typed numbers, dates in
// whatever format the author felt like that day. Failed parses never
// error; they fall back to a zero value or the raw trimmed text. That
// tolerance is deliberate and isolated here so tests can target it.

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// truthy is the accepted vocabulary for boolean cells, matched
// case-insensitively. There is no false vocabulary; anything else,
// including empty, is false.
var truthy = map[string]bool{
	"true": true,
	"yes":  true,
	"1":    true,
	"x":    true,
	"✓":    true,
	"done": true,
}

// ToRuntime converts a raw cell value into the typed value declared by cs.
func ToRuntime(cell any, cs ColumnSchema) any {
	switch cs.Type {
	case TypeBoolean:
		if b, ok := cell.(bool); ok {
			return b
		}
		return truthy[strings.ToLower(strings.TrimSpace(CellText(cell)))]

	case TypeNumber:
		return toFloat(cell)

	case TypeInteger:
		// Truncate toward zero, matching integer division on floats.
		return int64(toFloat(cell))

	case TypeDate:
		if t, ok := cell.(time.Time); ok {
			return t.UTC().Format(time.RFC3339)
		}
		s := strings.TrimSpace(CellText(cell))
		if s == "" {
			return ""
		}
		if t, err := dateparse.ParseAny(s); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
		return s

	case TypeJSON:
		s := strings.TrimSpace(CellText(cell))
		if s == "" {
			return ""
		}
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
		return s

	default:
		return strings.TrimSpace(CellText(cell))
	}
}

// ToStored converts a typed value into the cell value written to the store.
// Write-time conversion is intentionally asymmetric with read-time
// coercion: numbers and strings pass through unvalidated.
func ToStored(v any, cs ColumnSchema) any {
	switch cs.Type {
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			b = truthy[strings.ToLower(strings.TrimSpace(CellText(v)))]
		}
		if b {
			return "TRUE"
		}
		return "FALSE"

	case TypeDate:
		if t, ok := v.(time.Time); ok {
			return t
		}
		if s, ok := v.(string); ok {
			if t, err := dateparse.ParseAny(strings.TrimSpace(s)); err == nil {
				return t
			}
		}
		return v

	case TypeJSON:
		switch v.(type) {
		case nil, string:
			return v
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Sprint(v)
			}
			return string(b)
		}

	default:
		return v
	}
}

// CellText renders any raw cell value as text. Booleans use the stored
// TRUE/FALSE tokens and dates the canonical RFC 3339 form so text
// comparisons are stable across store drivers.
func CellText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// toFloat parses a cell as a floating point number, defaulting to 0 on
// any parse failure.
func toFloat(cell any) float64 {
	switch v := cell.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(CellText(cell)), 64)
	if err != nil {
		return 0
	}
	return f
}
