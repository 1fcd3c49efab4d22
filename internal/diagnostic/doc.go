// Package diagnostic provides structured errors, warnings and infos for
// definition resolution and import runs.
//
// Key capabilities:
//   - Field and property removal reports for out-of-date definitions
//   - Field-scoped coercion failures that never abort a record
//   - Record skips (no title) and group filtering notes
//   - A concurrency-safe run Log shared by import workers
package diagnostic
