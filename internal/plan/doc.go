// Package plan re-resolves saved import definitions against the live
// Notion schema and the destination types, producing an editable model.
//
// Resolution pipeline:
//  1. Resolve the root type (full id, short form or bare name) → fatal if absent
//  2. Collection mode: locate the collection field on the root type or its
//     embedded structs → fatal if absent
//  3. For each correspondence:
//     - Field gone → unbound, field_removed warning
//     - Property id gone → unbound, property_removed warning
//     - Property renamed → bound, stale_property_name info
//  4. Restore grouping and sorting, reporting what no longer resolves
//
// GenerateReport and FormatReport render a model for review.
package plan
