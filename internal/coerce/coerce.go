package coerce

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"notion-importer/internal/analyze"
	"notion-importer/internal/diagnostic"
)

// Path says where a raw string came from. Collection records join
// multi-valued properties with TAB, scalar records with COMMA, so flags
// are split differently on each path.
type Path int

const (
	PathScalar Path = iota
	PathCollection
)

// FlagSeparator returns the token separator for flags values on p.
func (p Path) FlagSeparator() string {
	if p == PathCollection {
		return "\t"
	}

	return ","
}

// ArraySeparator separates the elements of string array values.
const ArraySeparator = "\t"

// Bitmask accumulates flags enum members.
type Bitmask uint64

// With returns b with the bits of v set.
func (b Bitmask) With(v int64) Bitmask {
	return b | Bitmask(v)
}

// Has reports whether every bit of v is set in b.
func (b Bitmask) Has(v int64) bool {
	return b&Bitmask(v) == Bitmask(v)
}

// dateLayouts are tried in order for date/time fields.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Coerce converts raw into a value assignable to field through
// analyze.Accessor.SetField. On failure the error is an *Error, or a
// *TokenError for flags enums, which is returned together with the
// members that did parse.
func Coerce(raw string, field analyze.FieldInfo, path Path) (any, error) {
	sem := field.Semantic

	switch sem.Kind {
	case analyze.SemanticNumeric:
		return parseNumber(raw, field)
	case analyze.SemanticBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, &Error{Field: field.Name, Raw: raw, Err: unwrapNum(err)}
		}

		return b, nil
	case analyze.SemanticEnum:
		if sem.Enum == nil {
			return nil, &Error{Field: field.Name, Raw: raw, Err: ErrNotCoercible}
		}

		if sem.Enum.Flags {
			return parseFlags(raw, field, path)
		}

		v, ok := sem.Enum.Lookup(raw)
		if !ok {
			return nil, &Error{Field: field.Name, Raw: raw, Err: fmt.Errorf("%w of %s", ErrUnknownMember, sem.Enum.Name.Short())}
		}

		return v, nil
	case analyze.SemanticStringArray:
		return splitArray(raw), nil
	case analyze.SemanticDateTime:
		return parseTime(raw, field)
	case analyze.SemanticURL:
		if raw == "" {
			return nil, nil
		}

		u, err := url.Parse(raw)
		if err != nil {
			return nil, &Error{Field: field.Name, Raw: raw, Err: err}
		}

		return u, nil
	case analyze.SemanticCollection:
		return nil, &Error{Field: field.Name, Raw: raw, Err: ErrNotCoercible}
	default:
		// strings, image references and unrecognized types take the raw string
		return raw, nil
	}
}

func parseNumber(raw string, field analyze.FieldInfo) (any, error) {
	s := strings.TrimSpace(raw)
	kind := field.Semantic.Basic

	var (
		v   any
		err error
	)

	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err = strconv.ParseInt(s, 10, bitSize(kind))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v, err = strconv.ParseUint(s, 10, bitSize(kind))
	case reflect.Float32:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		v = float32(f)
	default:
		v, err = strconv.ParseFloat(s, 64)
	}

	if err != nil {
		return nil, &Error{Field: field.Name, Raw: raw, Err: unwrapNum(err)}
	}

	return v, nil
}

func bitSize(k reflect.Kind) int {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32:
		return 32
	case reflect.Int, reflect.Uint:
		return strconv.IntSize
	default:
		return 64
	}
}

// unwrapNum drops the strconv function name from parse errors.
func unwrapNum(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}

	return err
}

func parseFlags(raw string, field analyze.FieldInfo, path Path) (any, error) {
	var (
		mask Bitmask
		bad  []string
	)

	for _, tok := range strings.Split(raw, path.FlagSeparator()) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		v, ok := field.Semantic.Enum.Lookup(tok)
		if !ok {
			bad = append(bad, tok)
			continue
		}

		mask = mask.With(v)
	}

	if len(bad) > 0 {
		return mask, &TokenError{Field: field.Name, Enum: field.Semantic.Enum.Name, Tokens: bad}
	}

	return mask, nil
}

func splitArray(raw string) []string {
	out := []string{}

	for _, s := range strings.Split(raw, ArraySeparator) {
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

func parseTime(raw string, field analyze.FieldInfo) (any, error) {
	s := strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return nil, &Error{Field: field.Name, Raw: raw, Err: fmt.Errorf("not a date, expected %s", dateLayouts[len(dateLayouts)-1])}
}

// Apply coerces raw and writes it to the field of inst. Every failure is
// logged to log as coercion_failed and leaves the field as it was; a flags
// value is still written when only some of its tokens fail. Apply reports
// whether the field was written.
func Apply(acc analyze.Accessor, inst any, field analyze.FieldInfo, raw string, path Path, log *diagnostic.Log) bool {
	typePair := field.Owner.Short()
	fieldPath := analyze.FieldPath(field.Owner, "", field.Name)

	v, err := Coerce(raw, field, path)

	var tokErr *TokenError

	switch {
	case errors.As(err, &tokErr):
		for _, tok := range tokErr.Tokens {
			log.Error(diagnostic.CodeCoercionFailed,
				fmt.Sprintf("%q is not a member of %s, token skipped", tok, tokErr.Enum.Short()),
				typePair, fieldPath)
		}
	case err != nil:
		log.Error(diagnostic.CodeCoercionFailed, err.Error(), typePair, fieldPath)

		return false
	}

	if err := acc.SetField(inst, field.Name, v); err != nil {
		log.Error(diagnostic.CodeCoercionFailed, fmt.Sprintf("cannot assign %q: %v", raw, err), typePair, fieldPath)

		return false
	}

	return true
}
