package domain

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Failures are recovered at the smallest unit that can
// absorb them: field, row, file, run.
var (
	ErrUnclassified     = errors.New("file matches no known dataset")
	ErrEncodingFallback = errors.New("file is not valid UTF-8")
	ErrHeaderExtraction = errors.New("header extraction failed")
	ErrRowShape         = errors.New("row column count does not match header")
	ErrFieldParse       = errors.New("field parse failed")
	ErrStoreWrite       = errors.New("store write failed")
	ErrDuplicate        = errors.New("record already exists")
	ErrSchemaMismatch   = errors.New("record schema does not match target store")
)

// FieldError reports a required field that could not be parsed.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() []error { return []error{ErrFieldParse, e.Err} }

// RowError attaches a source line number to a row-level failure.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// FailureReason maps an error to a stable label for reports and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnclassified):
		return "unclassified"
	case errors.Is(err, ErrHeaderExtraction):
		return "header_extraction"
	case errors.Is(err, ErrRowShape):
		return "row_shape"
	case errors.Is(err, ErrFieldParse):
		return "field_parse"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrStoreWrite):
		return "store_write"
	case errors.Is(err, ErrEncodingFallback):
		return "encoding"
	default:
		return "other"
	}
}
