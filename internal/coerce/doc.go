// Package coerce converts the raw strings extracted from Notion pages into
// typed values for destination fields.
//
// Coercion never aborts a record. Apply turns every failure into a
// field-scoped coercion_failed diagnostic and leaves the field untouched;
// flags enums keep every member token that parses.
package coerce
