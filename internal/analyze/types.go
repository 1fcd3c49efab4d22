package analyze

import (
	"reflect"
	"strings"

	"notion-importer/internal/common"
)

// TypeID uniquely identifies a destination type.
// It is "<package path>.<type name>" and is persisted verbatim in import definitions.
type TypeID string

// NewTypeID builds a TypeID from a package path and a type name.
func NewTypeID(pkgPath, name string) TypeID {
	if pkgPath == "" {
		return TypeID(name)
	}

	return TypeID(pkgPath + "." + name)
}

// String returns the TypeID as stored in definition files.
func (id TypeID) String() string {
	return string(id)
}

// PkgPath returns the package path part of the TypeID.
func (id TypeID) PkgPath() string {
	s := string(id)
	slash := strings.LastIndex(s, "/")

	dot := strings.LastIndex(s, ".")
	if dot <= slash {
		return ""
	}

	return s[:dot]
}

// Name returns the type name part of the TypeID.
func (id TypeID) Name() string {
	s := string(id)
	if pkg := id.PkgPath(); pkg != "" {
		return s[len(pkg)+1:]
	}

	return s
}

// Short returns "alias.Name", e.g. "gamedata.Item".
func (id TypeID) Short() string {
	if alias := common.PkgAlias(id.PkgPath()); alias != "" {
		return alias + "." + id.Name()
	}

	return id.Name()
}

// SemanticKind classifies a field by how Notion values can populate it.
type SemanticKind int

const (
	SemanticOpaque SemanticKind = iota // unrecognized; any property, with a warning
	SemanticString
	SemanticNumeric
	SemanticBoolean
	SemanticDateTime
	SemanticURL
	SemanticEnum
	SemanticStringArray
	SemanticImage
	SemanticCollection
)

// String returns a human-readable representation of the SemanticKind.
func (k SemanticKind) String() string {
	switch k {
	case SemanticOpaque:
		return "opaque"
	case SemanticString:
		return "string"
	case SemanticNumeric:
		return "numeric"
	case SemanticBoolean:
		return "boolean"
	case SemanticDateTime:
		return "datetime"
	case SemanticURL:
		return "url"
	case SemanticEnum:
		return "enum"
	case SemanticStringArray:
		return "string-array"
	case SemanticImage:
		return "image"
	case SemanticCollection:
		return "collection"
	default:
		return common.UnknownStr
	}
}

// ElementMode is the container shape of a collection field.
type ElementMode int

const (
	ElementArray      ElementMode = iota // []T
	ElementList                          // []*T
	ElementDictionary                    // map[K]V
)

// String returns a human-readable representation of the ElementMode.
func (m ElementMode) String() string {
	switch m {
	case ElementArray:
		return "array"
	case ElementList:
		return "list"
	case ElementDictionary:
		return "dictionary"
	default:
		return common.UnknownStr
	}
}

// SemanticType is the tagged variant describing a field's destination type.
type SemanticType struct {
	Kind SemanticKind

	// Basic is the Go kind for numeric and boolean fields.
	Basic reflect.Kind

	// Enum is set for SemanticEnum.
	Enum *EnumInfo

	// Elem and ElemMode are set for SemanticCollection.
	// Elem is empty when the element is not a named struct.
	Elem     TypeID
	ElemMode ElementMode
}

// IsCollection reports whether the field holds an array, list or dictionary.
func (s SemanticType) IsCollection() bool {
	return s.Kind == SemanticCollection
}

// EnumInfo describes a named integer type with declared members.
type EnumInfo struct {
	Name    TypeID
	Flags   bool
	Members []EnumMember
}

// EnumMember is one declared enum constant.
type EnumMember struct {
	Name  string
	Value int64
}

// Lookup returns the value of the member with exactly the given name.
func (e *EnumInfo) Lookup(name string) (int64, bool) {
	for _, m := range e.Members {
		if m.Name == name {
			return m.Value, true
		}
	}

	return 0, false
}

// Names returns member names in declaration order.
func (e *EnumInfo) Names() []string {
	names := make([]string, len(e.Members))
	for i, m := range e.Members {
		names[i] = m.Name
	}

	return names
}

// TypeInfo describes a destination struct type.
type TypeInfo struct {
	ID        TypeID
	Namespace string // registration namespace; the package path for statically loaded types
	Fields    []FieldInfo
	Embedded  []Embedding // value-embedded structs, most-derived first
	Doc       string
}

// Embedding is a value-embedded struct, the Go analogue of a base type.
type Embedding struct {
	Type  TypeID
	Index int // field index of the embedded struct in its owner
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Exported bool              // Whether the field is exported
	Semantic SemanticType      // How Notion values populate the field
	TypeName string            // Display type, e.g. "[]string" or "gamedata.Rarity"
	Tag      reflect.StructTag // Raw struct tag
	Index    []int             // Index path from the root type, through embedded structs
	Owner    TypeID            // Declaring type
}

// JSONName returns the JSON tag name if present, otherwise the field name.
func (f *FieldInfo) JSONName() string {
	if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return name
		}
	}

	return f.Name
}

// HasTag returns true if the field has the specified tag.
func (f *FieldInfo) HasTag(key string) bool {
	return f.Tag.Get(key) != ""
}

// FieldPath joins type and field names into a readable diagnostic path.
// Example: ("gamedata.ItemTable", "Items", "Price") -> "ItemTable.Items[].Price".
func FieldPath(root TypeID, collectionField, field string) string {
	var b strings.Builder

	b.WriteString(root.Name())

	if collectionField != "" {
		b.WriteString("." + collectionField + "[]")
	}

	if field != "" {
		b.WriteString("." + field)
	}

	return b.String()
}
