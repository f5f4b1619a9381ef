package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a decode failure.
type Kind int

const (
	// KindStructural means the row has fewer cells than a decode step requires.
	KindStructural Kind = iota + 1
	// KindType means a numeric cell is not numeric.
	KindType
	// KindRange means a value is outside its domain.
	KindRange
	// KindReference means a code or natural key did not resolve.
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindType:
		return "type"
	case KindRange:
		return "range"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

var (
	ErrColumnOutOfRange = errors.New("column out of range")
	ErrNonNumeric       = errors.New("non-numeric value")
	ErrOutOfRange       = errors.New("value out of range")
	ErrNotFound         = errors.New("reference not found")
)

// RangeError is returned by the field assemblers when a component is outside
// its domain. Field names the offending component.
type RangeError struct {
	Field string
	Value string
	// Offset is the position of the offending column relative to the first
	// column the assembler consumed.
	Offset int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s (%s) out of range", e.Field, e.Value)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// DecodeError locates a failure in an input file. Row and Column are 1-based;
// Column is 0 when the failure is not tied to one column.
type DecodeError struct {
	Kind   Kind
	Row    int
	Column int
	Field  string
	Value  string
	// Key is the full lookup key of a Reference failure.
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "row %d", e.Row)
	if e.Column > 0 {
		fmt.Fprintf(&b, ", column %d", e.Column)
	}
	b.WriteString(": ")
	switch e.Kind {
	case KindReference:
		fmt.Fprintf(&b, "%s %s: ", e.Field, e.Key)
	case KindType:
		fmt.Fprintf(&b, "%q: ", e.Value)
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

func structuralError(row, column int) error {
	return &DecodeError{Kind: KindStructural, Row: row, Column: column, Err: ErrColumnOutOfRange}
}

func typeError(row, column int, value string) error {
	return &DecodeError{Kind: KindType, Row: row, Column: column, Value: value, Err: ErrNonNumeric}
}

func rangeError(row, column int, err *RangeError) error {
	return &DecodeError{
		Kind:   KindRange,
		Row:    row,
		Column: column + err.Offset,
		Field:  err.Field,
		Value:  err.Value,
		Err:    err,
	}
}

// column is 0 when the key spans several cells.
func referenceError(row, column int, field, key string) error {
	return &DecodeError{Kind: KindReference, Row: row, Column: column, Field: field, Key: key, Err: ErrNotFound}
}
