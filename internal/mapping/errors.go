package mapping

import (
	"errors"
	"fmt"

	"notion-importer/internal/analyze"
)

var (
	// ErrNotCollection is returned when a collection mapping targets a
	// field that is not an array, list or dictionary.
	ErrNotCollection = errors.New("field is not a collection")
	// ErrNonMatchable is returned when binding a field no property can feed.
	ErrNonMatchable = errors.New("field cannot be mapped")
	// ErrIncompatible is returned when binding a property of the wrong kind.
	ErrIncompatible = errors.New("property kind is not compatible with the field")
	// ErrCollectionOnly is returned by grouping and sorting in Normal mode.
	ErrCollectionOnly = errors.New("only available in collection mode")
)

// UnresolvedTypeError is returned when the destination type of a definition
// is not known to the host. It aborts loading the definition.
type UnresolvedTypeError struct {
	Type analyze.TypeID
}

func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("destination type %s not found", e.Type)
}

func (e *UnresolvedTypeError) Unwrap() error {
	return &analyze.TypeNotFoundError{Type: e.Type}
}

// UnresolvedFieldError is returned when the collection field of a definition
// is missing from the destination type and all of its embedded structs.
type UnresolvedFieldError struct {
	Type  analyze.TypeID
	Field string
}

func (e *UnresolvedFieldError) Error() string {
	return fmt.Sprintf("collection field %s not found on %s or its embedded types", e.Field, e.Type)
}

// UnsupportedModeError is returned when a mapping selects Dictionary mode.
type UnsupportedModeError struct {
	Mode  Mode
	Field string
}

func (e *UnsupportedModeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("mapping mode %s is not supported", e.Mode)
	}

	return fmt.Sprintf("mapping mode %s is not supported (field %s)", e.Mode, e.Field)
}

// FieldError reports a field name unknown to the current target type.
type FieldError struct {
	Type  analyze.TypeID
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s not found on %s", e.Field, e.Type)
}
