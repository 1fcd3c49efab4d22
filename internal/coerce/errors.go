package coerce

import (
	"errors"
	"fmt"
	"strings"

	"notion-importer/internal/analyze"
)

var (
	// ErrUnknownMember is returned when a token names no enum member.
	ErrUnknownMember = errors.New("not an enum member")
	// ErrNotCoercible is returned for fields raw strings cannot feed.
	ErrNotCoercible = errors.New("field type cannot be coerced from a string")
)

// Error is a field-scoped coercion failure.
type Error struct {
	Field string
	Raw   string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot coerce %q into %s: %v", e.Raw, e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TokenError lists flags tokens that were skipped. The value returned with
// it still holds every token that parsed.
type TokenError struct {
	Field  string
	Enum   analyze.TypeID
	Tokens []string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s: %s: %v of %s", e.Field, strings.Join(e.Tokens, ", "), ErrUnknownMember, e.Enum.Short())
}

func (e *TokenError) Unwrap() error {
	return ErrUnknownMember
}
