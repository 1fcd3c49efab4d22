package analyze

import "slices"

// Catalog enumerates destination types and their fields.
type Catalog interface {
	// ListAssignableTypes returns the types registered under namespace.
	// An empty namespace lists every assignable type.
	ListAssignableTypes(namespace string) []*TypeInfo
	// LookupType resolves a TypeID, including types that are only reachable
	// as embedded structs or collection elements.
	LookupType(id TypeID) (*TypeInfo, bool)
	// ListFields returns the instance fields of t: its own fields first,
	// then fields promoted from embedded structs.
	ListFields(t *TypeInfo) []FieldInfo
}

// Accessor reads, writes and creates instances of catalogued types.
type Accessor interface {
	GetField(inst any, name string) (any, error)
	SetField(inst any, name string, value any) error
	Instantiate(id TypeID) (any, error)
	InstantiateArray(elem TypeID, mode ElementMode, n int) (any, error)
	SetElement(array any, i int, elem any) error
}

// Host is a full introspection capability.
type Host interface {
	Catalog
	Accessor
}

// flattenFields lists own fields then promoted ones, hiding shadowed names.
func flattenFields(lookup func(TypeID) (*TypeInfo, bool), t *TypeInfo) []FieldInfo {
	if t == nil {
		return nil
	}

	seen := make(map[string]bool)
	visiting := make(map[TypeID]bool)

	var out []FieldInfo

	var walk func(t *TypeInfo, prefix []int)

	walk = func(t *TypeInfo, prefix []int) {
		if visiting[t.ID] {
			return
		}

		visiting[t.ID] = true
		defer delete(visiting, t.ID)

		for _, f := range t.Fields {
			if seen[f.Name] {
				continue
			}

			seen[f.Name] = true
			f.Index = append(slices.Clone(prefix), f.Index...)
			out = append(out, f)
		}

		for _, emb := range t.Embedded {
			base, ok := lookup(emb.Type)
			if !ok {
				continue
			}

			walk(base, append(slices.Clone(prefix), emb.Index))
		}
	}

	walk(t, nil)

	return out
}

// FindField locates a field by name on t, walking its own fields and then
// its embedded structs, most-derived first.
func FindField(c Catalog, t *TypeInfo, name string) (FieldInfo, bool) {
	for _, f := range c.ListFields(t) {
		if f.Name == name {
			return f, true
		}
	}

	return FieldInfo{}, false
}
