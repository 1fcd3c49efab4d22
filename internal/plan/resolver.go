package plan

import (
	"errors"
	"fmt"
	"strings"

	"notion-importer/internal/analyze"
	"notion-importer/internal/diagnostic"
	"notion-importer/internal/mapping"
	"notion-importer/internal/match"
	"notion-importer/internal/notion"
)

// Resolver rebuilds editable mapping models from saved definitions.
type Resolver struct {
	catalog analyze.Catalog
}

// NewResolver creates a new Resolver.
func NewResolver(c analyze.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve re-derives a model from def against the live property schema.
//
// Only a missing root type, a missing collection field or an unsupported
// collection shape fail. Fields and properties that no longer exist leave
// their field unbound and are reported as warnings.
func (r *Resolver) Resolve(
	def *mapping.Definition,
	props []notion.PropertyDescriptor,
) (*mapping.Model, *diagnostic.Diagnostics, error) {
	diags := &diagnostic.Diagnostics{}

	root, ok := r.LookupRoot(def.TargetScriptableObject)
	if !ok {
		return nil, diags, &mapping.UnresolvedTypeError{Type: def.TargetScriptableObject}
	}

	m, err := mapping.NewModel(r.catalog, root.ID, props)
	if err != nil {
		return nil, diags, err
	}

	if def.IsCollection() {
		if err := r.restoreCollection(m, def, diags); err != nil {
			return nil, diags, err
		}
	}

	m.UnbindAll()

	for _, c := range def.MappingData {
		restoreCorrespondence(m, def.DefinitionName, c, diags)
	}

	if def.IsCollection() {
		restoreGroupAndSort(m, def, diags)
	}

	reportFields(m, def.DefinitionName, diags)

	return m, diags, nil
}

// LookupRoot finds a type by its full id, then by a short form
// ("gamedata.Item") or a bare name among the assignable types.
// A short form matching more than one type does not resolve.
func (r *Resolver) LookupRoot(id analyze.TypeID) (*analyze.TypeInfo, bool) {
	if id == "" {
		return nil, false
	}

	if t, ok := r.catalog.LookupType(id); ok {
		return t, true
	}

	s := string(id)

	var found *analyze.TypeInfo

	for _, t := range r.catalog.ListAssignableTypes("") {
		full := string(t.ID)

		matched := t.ID.Short() == s ||
			strings.HasSuffix(full, "/"+s) ||
			(!strings.Contains(s, ".") && t.ID.Name() == s)
		if !matched {
			continue
		}

		if found != nil {
			return nil, false
		}

		found = t
	}

	return found, found != nil
}

func (r *Resolver) restoreCollection(m *mapping.Model, def *mapping.Definition, diags *diagnostic.Diagnostics) error {
	if def.MappingMode == mapping.ModeDictionary {
		return &mapping.UnsupportedModeError{Mode: def.MappingMode, Field: def.TargetFieldName}
	}

	// own fields first, then embedded structs
	if _, ok := analyze.FindField(r.catalog, m.Root, def.TargetFieldName); !ok {
		return &mapping.UnresolvedFieldError{Type: m.Root.ID, Field: def.TargetFieldName}
	}

	if err := m.SelectCollection(def.TargetFieldName); err != nil {
		return fmt.Errorf("failed to select collection %s: %w", def.TargetFieldName, err)
	}

	path := analyze.FieldPath(m.Root.ID, def.TargetFieldName, "")

	if m.Mode != def.MappingMode {
		diags.AddWarning(diagnostic.CodeCollectionChanged,
			fmt.Sprintf("field %s is now a %s collection, definition says %s", def.TargetFieldName, m.Mode, def.MappingMode),
			def.DefinitionName, path)
	}

	if def.TargetFieldType != nil && def.TargetFieldType.TypeID != "" && def.TargetFieldType.TypeID != m.Element.ID {
		diags.AddWarning(diagnostic.CodeCollectionChanged,
			fmt.Sprintf("element type is now %s, definition says %s", m.Element.ID.Short(), def.TargetFieldType.TypeID),
			def.DefinitionName, path)
	}

	return nil
}

func restoreCorrespondence(m *mapping.Model, typePair string, c mapping.Correspondence, diags *diagnostic.Diagnostics) {
	path := analyze.FieldPath(m.Root.ID, m.CollectionField, c.TargetFieldName)

	if _, ok := m.Item(c.TargetFieldName); !ok {
		diags.AddWarning(diagnostic.CodeFieldRemoved,
			fmt.Sprintf("field %s no longer exists on %s", c.TargetFieldName, m.Target().ID.Short()),
			typePair, path)

		return
	}

	idx := notion.IndexOf(m.Properties, c.TargetPropertyID)
	if idx < 0 {
		diags.AddWarning(diagnostic.CodePropertyRemoved,
			fmt.Sprintf("property %q (%s) no longer exists in the database", c.TargetPropertyName, c.TargetPropertyID),
			typePair, path)

		return
	}

	live := m.Properties[idx]

	if err := m.Bind(c.TargetFieldName, c.TargetPropertyID); err != nil {
		code := diagnostic.CodeIncompatible
		if errors.Is(err, mapping.ErrNonMatchable) {
			code = diagnostic.CodeNonMatchable
		}

		diags.AddWarning(code,
			fmt.Sprintf("property %q is now %s and can no longer feed the field: %v", live.Name, live.Type, err),
			typePair, path)

		return
	}

	if live.Name != c.TargetPropertyName {
		diags.AddInfo(diagnostic.CodeStalePropertyName,
			fmt.Sprintf("property %s was renamed from %q to %q", c.TargetPropertyID, c.TargetPropertyName, live.Name),
			typePair, path)
	}
}

func restoreGroupAndSort(m *mapping.Model, def *mapping.Definition, diags *diagnostic.Diagnostics) {
	if def.KeyProperty != "" {
		if err := m.SetGroupKey(def.KeyProperty, def.UseKeyFiltering); err != nil {
			diags.AddWarning(diagnostic.CodePropertyRemoved,
				fmt.Sprintf("group key property %s no longer exists, output is not grouped", def.KeyProperty),
				def.DefinitionName, "")
		}
	}

	if def.SortKey != "" {
		if err := m.SetSort(def.SortKey, def.SortOrder); err != nil {
			diags.AddWarning(diagnostic.CodeFieldRemoved,
				fmt.Sprintf("sort field %s no longer exists, output is not sorted", def.SortKey),
				def.DefinitionName, analyze.FieldPath(m.Root.ID, m.CollectionField, def.SortKey))
		}
	}
}

// reportFields notes fields that cannot take part in the import.
func reportFields(m *mapping.Model, typePair string, diags *diagnostic.Diagnostics) {
	for _, it := range m.Items {
		path := analyze.FieldPath(m.Root.ID, m.CollectionField, it.Field.Name)

		switch {
		case it.NonMatchable && it.Field.Semantic.IsCollection() && m.Mode.IsCollection():
			diags.AddInfo(diagnostic.CodeNestedCollection, it.Reason, typePair, path)
		case it.NonMatchable && !it.Field.Semantic.IsCollection():
			diags.AddInfo(diagnostic.CodeNonMatchable, it.Reason, typePair, path)
		case it.DoMatch && it.Compat.Verdict == match.VerdictFallback:
			diags.AddWarning(diagnostic.CodeUnknownFieldType,
				fmt.Sprintf("%s: %s", it.Field.TypeName, it.Compat.Reason), typePair, path)
		}
	}
}
