package notion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"notion-importer/internal/common"
)

// ObjectType classifies a Notion object for import.
type ObjectType int

const (
	ObjectGeneric ObjectType = iota
	ObjectDatabase
	ObjectPage
	ObjectContainer
	ObjectRecord
)

// String returns the name written to settings and definition files.
func (t ObjectType) String() string {
	switch t {
	case ObjectGeneric:
		return "Object"
	case ObjectDatabase:
		return "Database"
	case ObjectPage:
		return "Page"
	case ObjectContainer:
		return "Container"
	case ObjectRecord:
		return "Record"
	default:
		return common.UnknownStr
	}
}

// ParseObjectType parses an object type name.
func ParseObjectType(s string) (ObjectType, error) {
	for t := ObjectGeneric; t <= ObjectRecord; t++ {
		if t.String() == s {
			return t, nil
		}
	}

	return ObjectGeneric, fmt.Errorf("unknown object type %q", s)
}

// MarshalJSON writes the type name.
func (t ObjectType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// MarshalYAML writes the type name.
func (t ObjectType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// UnmarshalJSON accepts the type name or its legacy integer ordinal.
func (t *ObjectType) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = ObjectGeneric

		return nil
	}

	if len(data) > 0 && data[0] != '"' {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid object type %s: %w", data, err)
		}

		if n < int(ObjectGeneric) || n > int(ObjectRecord) {
			return fmt.Errorf("object type ordinal %d out of range", n)
		}

		*t = ObjectType(n)

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseObjectType(s)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// Text is a plain-text run of a Notion title.
type Text struct {
	PlainText string `json:"plain_text"`
	Href      string `json:"href,omitempty"`
}

// Parent references the page or database that contains an object.
type Parent struct {
	Type       string `json:"type,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

// ID returns the page id, falling back to the database id.
func (p *Parent) ID() string {
	if p == nil {
		return ""
	}

	if strings.TrimSpace(p.PageID) != "" {
		return p.PageID
	}

	return p.DatabaseID
}

// Object is a Notion object known to the importer, as kept in the settings file.
type Object struct {
	ObjectType  ObjectType           `json:"objectType"`
	Object      string               `json:"object"`
	ID          string               `json:"id"`
	Description string               `json:"description,omitempty"`
	URL         string               `json:"url,omitempty"`
	Archived    bool                 `json:"archived"`
	Title       []Text               `json:"title"`
	Properties  []PropertyDescriptor `json:"properties"`
	Parent      *Parent              `json:"parent"`
}

// MainTitle returns the concatenated title, or "" when there is none.
func (o *Object) MainTitle() string {
	var b strings.Builder
	for _, t := range o.Title {
		b.WriteString(t.PlainText)
	}

	return b.String()
}

// ParentID returns the normalized parent id, or "" for a root object.
func (o *Object) ParentID() string {
	return NormalizeID(o.Parent.ID())
}

// CycleError is returned when a chain of parent references loops.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "cycle in object parent chain: " + strings.Join(e.Chain, " -> ")
}

// Forest indexes objects by id and by parent. Objects whose parent is
// unknown are roots.
type Forest struct {
	objects  []*Object
	byID     map[string]*Object
	children map[string][]*Object
	roots    []*Object
}

// NewForest builds a Forest, failing with *CycleError if any parent chain loops.
func NewForest(objects []Object) (*Forest, error) {
	f := &Forest{
		byID:     make(map[string]*Object, len(objects)),
		children: make(map[string][]*Object),
	}

	for i := range objects {
		o := &objects[i]
		f.objects = append(f.objects, o)
		f.byID[NormalizeID(o.ID)] = o
	}

	for _, o := range f.objects {
		if err := f.checkChain(o); err != nil {
			return nil, err
		}

		pid := o.ParentID()
		if _, ok := f.byID[pid]; pid == "" || !ok {
			f.roots = append(f.roots, o)

			continue
		}

		f.children[pid] = append(f.children[pid], o)
	}

	return f, nil
}

func (f *Forest) checkChain(o *Object) error {
	seen := make(map[string]bool)

	var chain []string

	for cur := o; cur != nil; {
		id := NormalizeID(cur.ID)
		chain = append(chain, id)

		if seen[id] {
			return &CycleError{Chain: chain}
		}

		seen[id] = true
		cur = f.byID[cur.ParentID()]
	}

	return nil
}

// Objects returns all objects in input order.
func (f *Forest) Objects() []*Object {
	return f.objects
}

// Get returns the object with the given id.
func (f *Forest) Get(id string) (*Object, bool) {
	o, ok := f.byID[NormalizeID(id)]

	return o, ok
}

// Roots returns objects without a known parent.
func (f *Forest) Roots() []*Object {
	return f.roots
}

// Children returns the direct children of id in input order.
func (f *Forest) Children(id string) []*Object {
	return f.children[NormalizeID(id)]
}

// Walk visits the forest depth-first from the roots.
func (f *Forest) Walk(fn func(o *Object, depth int)) {
	var visit func(o *Object, depth int)

	visit = func(o *Object, depth int) {
		fn(o, depth)

		for _, c := range f.Children(o.ID) {
			visit(c, depth+1)
		}
	}

	for _, r := range f.roots {
		visit(r, 0)
	}
}

// Properties returns the schema of id. A container uses the schema of its
// first child database.
func (f *Forest) Properties(id string) []PropertyDescriptor {
	o, ok := f.Get(id)
	if !ok {
		return nil
	}

	if o.ObjectType == ObjectContainer {
		for _, c := range f.Children(o.ID) {
			if c.ObjectType == ObjectDatabase {
				return c.Properties
			}
		}

		return nil
	}

	return o.Properties
}
