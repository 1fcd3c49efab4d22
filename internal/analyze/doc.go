// Package analyze describes destination types for Notion imports.
//
// It offers two hosts behind the Catalog interface:
//   - Registry: reflection over registered Go types, also an Accessor
//     that reads, writes and instantiates values
//   - TypeGraph: built by Analyzer from source with golang.org/x/tools/go/packages,
//     for inspecting packages that are not compiled into the binary
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: struct fields plus value-embedded structs (base types)
//   - FieldInfo: field name, semantic type, tags and index path
//   - SemanticType: how a Notion value can populate the field
package analyze
