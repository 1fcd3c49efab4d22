package analyze

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is returned by SetField when a value cannot be stored in a field.
var ErrTypeMismatch = errors.New("value type mismatch")

// FieldNotFoundError is returned when a field is not declared on a type or its embedded structs.
type FieldNotFoundError struct {
	Type  TypeID
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found on %s", e.Field, e.Type)
}

// TypeNotFoundError is returned when a TypeID is not known to the host.
type TypeNotFoundError struct {
	Type TypeID
}

func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("type %s not found", e.Type)
}
