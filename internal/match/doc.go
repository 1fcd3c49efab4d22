// Package match decides which Notion properties can feed a destination
// field and ranks them.
//
// Key functions:
//   - CompatibleProperties: the property kinds a field's semantic type accepts
//   - RankProperties: orders compatible properties by name similarity
//   - FoldName: reduces Go field names and Notion display names to comparable keys
//   - Levenshtein: rune-based edit distance
package match
