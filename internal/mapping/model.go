package mapping

import (
	"fmt"

	"notion-importer/internal/analyze"
	"notion-importer/internal/match"
	"notion-importer/internal/notion"
)

// Item is one destination field of the model with its candidate properties.
type Item struct {
	Field analyze.FieldInfo

	// Compat holds the properties the field can be bound to, in schema order.
	Compat match.CompatibilityResult
	// Ranked orders Compat.Properties by name similarity.
	Ranked match.CandidateList

	// DoMatch is set when the field is bound to Compat.Properties[PropertyIndex].
	DoMatch       bool
	PropertyIndex int

	// NonMatchable fields are shown but can never be bound. Reason says why.
	NonMatchable bool
	Reason       string
}

// Property returns the bound property.
func (it *Item) Property() (notion.PropertyDescriptor, bool) {
	if !it.DoMatch || it.PropertyIndex < 0 || it.PropertyIndex >= len(it.Compat.Properties) {
		return notion.PropertyDescriptor{}, false
	}

	return it.Compat.Properties[it.PropertyIndex], true
}

// Model is the editable mapping between a destination type and the live
// schema of a Notion database.
type Model struct {
	catalog analyze.Catalog

	Root *analyze.TypeInfo
	Mode Mode

	// CollectionField and Element are set in collection modes.
	CollectionField string
	Element         *analyze.TypeInfo

	Items      []*Item
	Properties []notion.PropertyDescriptor

	GroupKeyPropertyID string
	UseGroupFiltering  bool
	SortFieldName      string
	SortOrder          SortOrder
}

// NewModel builds a Normal-mode model over the fields of root, proposing
// the best ranked property for every matchable field.
func NewModel(c analyze.Catalog, root analyze.TypeID, props []notion.PropertyDescriptor) (*Model, error) {
	info, ok := c.LookupType(root)
	if !ok {
		return nil, &UnresolvedTypeError{Type: root}
	}

	m := &Model{
		catalog:    c,
		Root:       info,
		Mode:       ModeNormal,
		Properties: props,
	}
	m.Items = m.buildItems(info, false)

	return m, nil
}

// Catalog returns the catalog the model was built with.
func (m *Model) Catalog() analyze.Catalog {
	return m.catalog
}

// Target returns the type records are coerced into.
func (m *Model) Target() *analyze.TypeInfo {
	if m.Mode.IsCollection() && m.Element != nil {
		return m.Element
	}

	return m.Root
}

// Item returns the item for a field name.
func (m *Model) Item(name string) (*Item, bool) {
	for _, it := range m.Items {
		if it.Field.Name == name {
			return it, true
		}
	}

	return nil, false
}

// Bound returns the items with DoMatch set, in field order.
func (m *Model) Bound() []*Item {
	var out []*Item

	for _, it := range m.Items {
		if it.DoMatch {
			out = append(out, it)
		}
	}

	return out
}

func (m *Model) buildItems(t *analyze.TypeInfo, collection bool) []*Item {
	fields := m.catalog.ListFields(t)
	items := make([]*Item, 0, len(fields))

	for _, f := range fields {
		it := &Item{Field: f, PropertyIndex: -1}

		switch {
		case f.Semantic.IsCollection() && collection:
			it.NonMatchable = true
			it.Reason = "nested collections are not supported"
		case f.Semantic.IsCollection():
			it.NonMatchable = true
			it.Reason = fmt.Sprintf("%s field, select it as the collection target", f.Semantic.ElemMode)
		default:
			it.Compat = match.CompatibleProperties(f.Semantic, m.Properties)
			it.Ranked = match.RankProperties(f, m.Properties)

			if !it.Compat.Matchable() {
				it.NonMatchable = true
				it.Reason = it.Compat.Reason
			} else if best := it.Ranked.Best(); best != nil && it.Compat.Verdict != match.VerdictFallback {
				it.DoMatch = true
				it.PropertyIndex = best.Index
			}
		}

		items = append(items, it)
	}

	return items
}

// SelectCollection switches the model into collection mode over the element
// type of the named field. Array and list fields select Array and List
// mode; dictionary fields are rejected with *UnsupportedModeError.
// Grouping, sorting and bindings are reset.
func (m *Model) SelectCollection(fieldName string) error {
	f, ok := analyze.FindField(m.catalog, m.Root, fieldName)
	if !ok {
		return &UnresolvedFieldError{Type: m.Root.ID, Field: fieldName}
	}

	if !f.Semantic.IsCollection() {
		return fmt.Errorf("%s: %w", analyze.FieldPath(m.Root.ID, "", fieldName), ErrNotCollection)
	}

	mode := ModeFor(f.Semantic.ElemMode)
	if mode == ModeDictionary {
		return &UnsupportedModeError{Mode: mode, Field: fieldName}
	}

	elem, ok := m.catalog.LookupType(f.Semantic.Elem)
	if f.Semantic.Elem == "" || !ok {
		return fmt.Errorf("element type of %s is not a known struct: %w",
			analyze.FieldPath(m.Root.ID, "", fieldName), &analyze.TypeNotFoundError{Type: f.Semantic.Elem})
	}

	m.Mode = mode
	m.CollectionField = fieldName
	m.Element = elem
	m.Items = m.buildItems(elem, true)
	m.GroupKeyPropertyID = ""
	m.UseGroupFiltering = false
	m.SortFieldName = ""
	m.SortOrder = SortAscending

	return nil
}

// SelectNormal switches back to Normal mode over the root type.
func (m *Model) SelectNormal() {
	m.Mode = ModeNormal
	m.CollectionField = ""
	m.Element = nil
	m.Items = m.buildItems(m.Root, false)
	m.GroupKeyPropertyID = ""
	m.UseGroupFiltering = false
	m.SortFieldName = ""
	m.SortOrder = SortAscending
}

// Bind maps a field to the property with the given id.
func (m *Model) Bind(fieldName, propertyID string) error {
	it, ok := m.Item(fieldName)
	if !ok {
		return &FieldError{Type: m.Target().ID, Field: fieldName}
	}

	if it.NonMatchable {
		return fmt.Errorf("%s: %w: %s", fieldName, ErrNonMatchable, it.Reason)
	}

	idx := it.Compat.IndexOf(propertyID)
	if idx < 0 {
		if notion.IndexOf(m.Properties, propertyID) < 0 {
			return fmt.Errorf("property %s not found in database", propertyID)
		}

		return fmt.Errorf("%s <- %s: %w", fieldName, propertyID, ErrIncompatible)
	}

	it.DoMatch = true
	it.PropertyIndex = idx

	return nil
}

// Unbind clears the binding of a field.
func (m *Model) Unbind(fieldName string) error {
	it, ok := m.Item(fieldName)
	if !ok {
		return &FieldError{Type: m.Target().ID, Field: fieldName}
	}

	it.DoMatch = false

	return nil
}

// UnbindAll clears every binding.
func (m *Model) UnbindAll() {
	for _, it := range m.Items {
		it.DoMatch = false
	}
}

// SetGroupKey groups collection output by the value of a property. An empty
// id removes grouping. filtering asks for a single group at run time.
func (m *Model) SetGroupKey(propertyID string, filtering bool) error {
	if !m.Mode.IsCollection() {
		return fmt.Errorf("group key: %w", ErrCollectionOnly)
	}

	if propertyID != "" && notion.IndexOf(m.Properties, propertyID) < 0 {
		return fmt.Errorf("group key property %s not found in database", propertyID)
	}

	m.GroupKeyPropertyID = propertyID
	m.UseGroupFiltering = propertyID != "" && filtering

	return nil
}

// SetSort orders each group by an element field. An empty name removes sorting.
func (m *Model) SetSort(fieldName string, order SortOrder) error {
	if !m.Mode.IsCollection() {
		return fmt.Errorf("sort: %w", ErrCollectionOnly)
	}

	if fieldName != "" {
		if _, ok := analyze.FindField(m.catalog, m.Element, fieldName); !ok {
			return &FieldError{Type: m.Element.ID, Field: fieldName}
		}
	}

	m.SortFieldName = fieldName
	m.SortOrder = order

	return nil
}
