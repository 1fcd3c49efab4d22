package analyze

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sync"
	"time"
	"unsafe"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	urlType    = reflect.TypeOf(url.URL{})
	stringType = reflect.TypeOf("")
)

// Registry is a reflection-backed Host over explicitly registered Go types.
//
// Destination structs are registered under a namespace. Enum and asset types
// must be registered too, since Go has no runtime marker for them.
type Registry struct {
	mu         sync.Mutex
	known      map[TypeID]reflect.Type
	namespaces map[TypeID]string
	order      []TypeID
	enums      map[reflect.Type]*EnumInfo
	assets     map[reflect.Type]bool
	cache      map[TypeID]*TypeInfo
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		known:      make(map[TypeID]reflect.Type),
		namespaces: make(map[TypeID]string),
		enums:      make(map[reflect.Type]*EnumInfo),
		assets:     make(map[reflect.Type]bool),
		cache:      make(map[TypeID]*TypeInfo),
	}
}

// TypeIDOf returns the TypeID of a named type; pointers are dereferenced.
func TypeIDOf(sample any) TypeID {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil {
		return ""
	}

	return typeIDOf(t)
}

func typeIDOf(t reflect.Type) TypeID {
	return NewTypeID(t.PkgPath(), t.Name())
}

// Register adds assignable destination types under namespace.
// Samples must be named structs or pointers to them.
func (r *Registry) Register(namespace string, samples ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		t := reflect.TypeOf(s)
		if t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
			return fmt.Errorf("cannot register %T: not a named struct", s)
		}

		id := typeIDOf(t)
		if _, dup := r.namespaces[id]; !dup {
			r.order = append(r.order, id)
		}

		r.namespaces[id] = namespace
		r.addKnown(t)
	}

	clear(r.cache)

	return nil
}

// RegisterEnum declares a named integer type as an enum with the given members.
// Flags enums combine members with bitwise OR.
func (r *Registry) RegisterEnum(sample any, flags bool, members ...EnumMember) error {
	t := reflect.TypeOf(sample)
	if t == nil || t.Name() == "" || !isInteger(t.Kind()) {
		return fmt.Errorf("cannot register enum %T: not a named integer type", sample)
	}

	if len(members) == 0 {
		return fmt.Errorf("enum %s has no members", t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.enums[t] = &EnumInfo{Name: typeIDOf(t), Flags: flags, Members: members}
	clear(r.cache)

	return nil
}

// RegisterAsset declares a named type as an image-like asset reference,
// populated from Notion files properties.
func (r *Registry) RegisterAsset(sample any) error {
	t := reflect.TypeOf(sample)
	if t == nil || t.Name() == "" {
		return fmt.Errorf("cannot register asset %T: not a named type", sample)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.assets[t] = true
	clear(r.cache)

	return nil
}

// addKnown records t and the named structs reachable from it.
func (r *Registry) addKnown(t reflect.Type) {
	id := typeIDOf(t)
	if _, ok := r.known[id]; ok {
		return
	}

	r.known[id] = t

	for i := range t.NumField() {
		if elem := structElem(t.Field(i).Type); elem != nil {
			r.addKnown(elem)
		}
	}
}

// structElem returns the named struct held by t directly or as a collection element.
func structElem(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		t = t.Elem()
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
	default:
	}

	if t.Kind() != reflect.Struct || t.Name() == "" || t == timeType || t == urlType {
		return nil
	}

	return t
}

// ListAssignableTypes implements Catalog.
func (r *Registry) ListAssignableTypes(namespace string) []*TypeInfo {
	r.mu.Lock()
	ids := make([]TypeID, 0, len(r.order))

	for _, id := range r.order {
		if namespace == "" || r.namespaces[id] == namespace {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()

	out := make([]*TypeInfo, 0, len(ids))

	for _, id := range ids {
		if info, ok := r.LookupType(id); ok {
			out = append(out, info)
		}
	}

	return out
}

// LookupType implements Catalog.
func (r *Registry) LookupType(id TypeID) (*TypeInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.cache[id]; ok {
		return info, true
	}

	t, ok := r.known[id]
	if !ok {
		return nil, false
	}

	info := r.build(id, t)
	r.cache[id] = info

	return info, true
}

// ListFields implements Catalog.
func (r *Registry) ListFields(t *TypeInfo) []FieldInfo {
	return flattenFields(r.LookupType, t)
}

func (r *Registry) build(id TypeID, t reflect.Type) *TypeInfo {
	info := &TypeInfo{ID: id, Namespace: r.namespaces[id]}

	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.Name == "_" {
			continue
		}

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Type.Name() != "" {
			info.Embedded = append(info.Embedded, Embedding{Type: typeIDOf(sf.Type), Index: i})

			continue
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:     sf.Name,
			Exported: sf.IsExported(),
			Semantic: r.classify(sf.Type),
			TypeName: sf.Type.String(),
			Tag:      sf.Tag,
			Index:    []int{i},
			Owner:    id,
		})
	}

	return info
}

func (r *Registry) classify(t reflect.Type) SemanticType {
	if e, ok := r.enums[t]; ok {
		return SemanticType{Kind: SemanticEnum, Basic: t.Kind(), Enum: e}
	}

	if r.assets[t] {
		return SemanticType{Kind: SemanticImage}
	}

	switch t {
	case timeType:
		return SemanticType{Kind: SemanticDateTime}
	case urlType, reflect.PointerTo(urlType):
		return SemanticType{Kind: SemanticURL}
	}

	switch k := t.Kind(); {
	case k == reflect.String:
		return SemanticType{Kind: SemanticString}
	case k == reflect.Bool:
		return SemanticType{Kind: SemanticBoolean, Basic: k}
	case isInteger(k), k == reflect.Float32, k == reflect.Float64:
		return SemanticType{Kind: SemanticNumeric, Basic: k}
	case k == reflect.Slice && t.Elem() == stringType:
		return SemanticType{Kind: SemanticStringArray}
	case k == reflect.Slice, k == reflect.Map:
		st := SemanticType{Kind: SemanticCollection, ElemMode: ElementArray}

		elem := t.Elem()
		if k == reflect.Map {
			st.ElemMode = ElementDictionary
		} else if elem.Kind() == reflect.Pointer {
			st.ElemMode = ElementList
			elem = elem.Elem()
		}

		if s := structElem(elem); s != nil {
			st.Elem = typeIDOf(s)
		}

		return st
	case k == reflect.Array:
		return SemanticType{Kind: SemanticCollection, ElemMode: ElementArray}
	default:
		return SemanticType{Kind: SemanticOpaque}
	}
}

func isInteger(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// target validates inst and returns its struct value and type info.
func (r *Registry) target(inst any) (reflect.Value, *TypeInfo, error) {
	v := reflect.ValueOf(inst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("instance must be a non-nil pointer to a struct, got %T", inst)
	}

	v = v.Elem()
	id := typeIDOf(v.Type())

	info, ok := r.LookupType(id)
	if !ok {
		return reflect.Value{}, nil, &TypeNotFoundError{Type: id}
	}

	return v, info, nil
}

// reachable returns a settable view of fv, including unexported fields.
func reachable(fv reflect.Value) reflect.Value {
	if fv.CanSet() {
		return fv
	}

	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
}

// GetField implements Accessor.
func (r *Registry) GetField(inst any, name string) (any, error) {
	v, info, err := r.target(inst)
	if err != nil {
		return nil, err
	}

	f, ok := FindField(r, info, name)
	if !ok {
		return nil, &FieldNotFoundError{Type: info.ID, Field: name}
	}

	return reachable(v.FieldByIndex(f.Index)).Interface(), nil
}

// SetField implements Accessor. Values of a convertible kind are converted
// to the field type; integers are range-checked.
func (r *Registry) SetField(inst any, name string, value any) error {
	v, info, err := r.target(inst)
	if err != nil {
		return err
	}

	f, ok := FindField(r, info, name)
	if !ok {
		return &FieldNotFoundError{Type: info.ID, Field: name}
	}

	fv := reachable(v.FieldByIndex(f.Index))
	if err := assign(fv, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", FieldPath(info.ID, "", name), err)
	}

	return nil
}

func assign(fv reflect.Value, value any) error {
	ft := fv.Type()
	if value == nil {
		fv.Set(reflect.Zero(ft))

		return nil
	}

	val := reflect.ValueOf(value)

	switch {
	case val.Type().AssignableTo(ft):
		fv.Set(val)
	case val.Kind() == reflect.Pointer && !val.IsNil() && val.Elem().Type().AssignableTo(ft):
		fv.Set(val.Elem())
	case ft.Kind() == reflect.Pointer && val.Type().AssignableTo(ft.Elem()):
		p := reflect.New(ft.Elem())
		p.Elem().Set(val)
		fv.Set(p)
	case convertible(val, ft):
		fv.Set(val.Convert(ft))
	default:
		return fmt.Errorf("cannot assign %s to %s: %w", val.Type(), ft, ErrTypeMismatch)
	}

	return nil
}

// convertible allows conversions within the same value class only.
func convertible(val reflect.Value, ft reflect.Type) bool {
	if !val.Type().ConvertibleTo(ft) {
		return false
	}

	vk, fk := val.Kind(), ft.Kind()

	switch {
	case isSigned(vk) && isInteger(fk):
		return !overflows(ft, val.Int(), 0, true)
	case isUnsigned(vk) && isInteger(fk):
		return !overflows(ft, 0, val.Uint(), false)
	case (vk == reflect.Float32 || vk == reflect.Float64) && (fk == reflect.Float32 || fk == reflect.Float64):
		return !reflect.Zero(ft).OverflowFloat(val.Float())
	case vk == reflect.String && fk == reflect.String, vk == reflect.Bool && fk == reflect.Bool:
		return true
	case vk == reflect.Slice && fk == reflect.Slice:
		return val.Type().Elem() == ft.Elem()
	default:
		return false
	}
}

func overflows(ft reflect.Type, i int64, u uint64, signed bool) bool {
	zero := reflect.Zero(ft)

	switch {
	case isSigned(ft.Kind()) && signed:
		return zero.OverflowInt(i)
	case isSigned(ft.Kind()):
		return u > 1<<63-1 || zero.OverflowInt(int64(u))
	case signed:
		return i < 0 || zero.OverflowUint(uint64(i))
	default:
		return zero.OverflowUint(u)
	}
}

// Instantiate implements Accessor. It returns a pointer to a zero value.
func (r *Registry) Instantiate(id TypeID) (any, error) {
	t, err := r.reflectType(id)
	if err != nil {
		return nil, err
	}

	return reflect.New(t).Interface(), nil
}

// InstantiateArray implements Accessor: []T for arrays, []*T for lists.
func (r *Registry) InstantiateArray(elem TypeID, mode ElementMode, n int) (any, error) {
	t, err := r.reflectType(elem)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ElementArray:
	case ElementList:
		t = reflect.PointerTo(t)
	default:
		return nil, fmt.Errorf("cannot instantiate %s container of %s", mode, elem)
	}

	return reflect.MakeSlice(reflect.SliceOf(t), n, n).Interface(), nil
}

// SetElement implements Accessor.
func (r *Registry) SetElement(array any, i int, elem any) error {
	av := reflect.ValueOf(array)
	if av.Kind() != reflect.Slice {
		return fmt.Errorf("%T is not a slice", array)
	}

	if i < 0 || i >= av.Len() {
		return fmt.Errorf("index %d out of range [0,%d)", i, av.Len())
	}

	return assign(av.Index(i), elem)
}

func (r *Registry) reflectType(id TypeID) (reflect.Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.known[id]
	if !ok {
		return nil, &TypeNotFoundError{Type: id}
	}

	return t, nil
}

var _ Host = (*Registry)(nil)

// IsTypeNotFound reports whether err is, or wraps, a TypeNotFoundError.
func IsTypeNotFound(err error) bool {
	var tnf *TypeNotFoundError

	return errors.As(err, &tnf)
}
