// Package schema derives column schemas from spreadsheet headers and
// converts cell values between their stored and runtime representations.
// This package has no store dependencies and can be used by any backend.
package schema

import (
	"encoding/json"
	"strings"
)

// FieldType represents the declared value type for a column.
type FieldType int

const (
	TypeString FieldType = iota
	TypeBoolean
	TypeNumber
	TypeInteger
	TypeDate
	TypeJSON
)

// ParseFieldType converts a type name from a caller schema or a
// schema-definition tab into a FieldType. Unrecognized names fall back
// to TypeString so a typo in a definition tab never breaks a request.
func ParseFieldType(s string) FieldType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return TypeBoolean
	case "number", "numeric", "float":
		return TypeNumber
	case "integer", "int":
		return TypeInteger
	case "date", "datetime":
		return TypeDate
	case "json":
		return TypeJSON
	default:
		return TypeString
	}
}

// String returns the canonical type name.
func (t FieldType) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeDate:
		return "date"
	case TypeJSON:
		return "json"
	default:
		return "string"
	}
}

// MarshalJSON emits the canonical type name for schema introspection.
func (t FieldType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts any type name ParseFieldType understands.
func (t *FieldType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseFieldType(s)
	return nil
}

// ColumnSchema is the effective schema for a single column: the original
// header text, the property key records are built with, and the value type.
type ColumnSchema struct {
	Header string    `json:"header"`
	Key    string    `json:"key"`
	Type   FieldType `json:"type"`
}

// Override is a caller-supplied schema declaration for one header.
// In JSON it accepts either the full object form
// {"type":"date","key":"dueDate"} or the shorthand string "date".
type Override struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}

// UnmarshalJSON accepts both the shorthand string form and the object form.
func (o *Override) UnmarshalJSON(b []byte) error {
	var shorthand string
	if err := json.Unmarshal(b, &shorthand); err == nil {
		o.Type = shorthand
		o.Key = ""
		return nil
	}

	type plain Override
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = Override(p)
	return nil
}
