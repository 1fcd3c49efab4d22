package analyze

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/types"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Doc comment directives recognized on named types.
const (
	FlagsDirective = "notion:flags"
	AssetDirective = "notion:asset"
)

// TypeGraph is a Catalog built from Go source without compiling the destination types in.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named structs.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Structs defined in this package, sorted by name
}

// ListAssignableTypes implements Catalog. The namespace is a package path.
func (g *TypeGraph) ListAssignableTypes(namespace string) []*TypeInfo {
	var out []*TypeInfo

	paths := make([]string, 0, len(g.Packages))
	for p := range g.Packages {
		paths = append(paths, p)
	}

	slices.Sort(paths)

	for _, p := range paths {
		if namespace != "" && namespace != p {
			continue
		}

		for _, id := range g.Packages[p].Types {
			out = append(out, g.Types[id])
		}
	}

	return out
}

// LookupType implements Catalog.
func (g *TypeGraph) LookupType(id TypeID) (*TypeInfo, bool) {
	info, ok := g.Types[id]

	return info, ok
}

// ListFields implements Catalog.
func (g *TypeGraph) ListFields(t *TypeInfo) []FieldInfo {
	return flattenFields(g.LookupType, t)
}

// Analyzer loads Go packages and builds a TypeGraph.
type Analyzer struct {
	graph *TypeGraph
	docs  map[*types.TypeName]string
	enums map[*types.TypeName]*EnumInfo
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph: NewTypeGraph(),
		docs:  make(map[*types.TypeName]string),
		enums: make(map[*types.TypeName]*EnumInfo),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./gamedata").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	for _, pkg := range pkgs {
		a.collectDocs(pkg)
		a.collectEnums(pkg)
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// collectDocs records doc comments of type declarations for directive lookup.
func (a *Analyzer) collectDocs(pkg *packages.Package) {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}

			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil {
					doc = gen.Doc
				}

				if doc == nil {
					continue
				}

				if tn, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName); ok {
					a.docs[tn] = doc.Text()
				}
			}
		}
	}
}

// collectEnums treats every named integer type with typed constants as an enum.
func (a *Analyzer) collectEnums(pkg *packages.Package) {
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok {
			continue
		}

		named, ok := c.Type().(*types.Named)
		if !ok || named.Obj().Pkg() != pkg.Types {
			continue
		}

		basic, ok := named.Underlying().(*types.Basic)
		if !ok || basic.Info()&types.IsInteger == 0 {
			continue
		}

		val, exact := constant.Int64Val(constant.ToInt(c.Val()))
		if !exact {
			continue
		}

		tn := named.Obj()

		e := a.enums[tn]
		if e == nil {
			e = &EnumInfo{
				Name:  NewTypeID(pkg.PkgPath, tn.Name()),
				Flags: hasDirective(a.docs[tn], FlagsDirective),
			}
			a.enums[tn] = e
		}

		e.Members = append(e.Members, EnumMember{Name: c.Name(), Value: val})
	}

	for _, e := range a.enums {
		slices.SortStableFunc(e.Members, func(x, y EnumMember) int {
			switch {
			case x.Value < y.Value:
				return -1
			case x.Value > y.Value:
				return 1
			default:
				return strings.Compare(x.Name, y.Name)
			}
		})
	}
}

func hasDirective(doc, directive string) bool {
	for _, line := range strings.Split(doc, "\n") {
		if strings.TrimSpace(line) == directive {
			return true
		}
	}

	return false
}

// processPackage extracts exported struct types from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		st, ok := typeName.Type().Underlying().(*types.Struct)
		if !ok {
			continue
		}

		id := NewTypeID(pkg.PkgPath, name)
		a.graph.Types[id] = a.analyzeStruct(id, pkg.PkgPath, st, a.docs[typeName])
		pkgInfo.Types = append(pkgInfo.Types, id)
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo
}

// analyzeStruct extracts fields and embedded structs.
func (a *Analyzer) analyzeStruct(id TypeID, pkgPath string, st *types.Struct, doc string) *TypeInfo {
	info := &TypeInfo{ID: id, Namespace: pkgPath, Doc: doc}

	for i := range st.NumFields() {
		field := st.Field(i)
		if field.Name() == "_" {
			continue
		}

		if field.Embedded() {
			if named, ok := field.Type().(*types.Named); ok {
				if _, isStruct := named.Underlying().(*types.Struct); isStruct {
					info.Embedded = append(info.Embedded, Embedding{Type: namedID(named), Index: i})

					continue
				}
			}
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name(),
			Exported: field.Exported(),
			Semantic: a.classify(field.Type()),
			TypeName: types.TypeString(field.Type(), packageName),
			Tag:      reflect.StructTag(st.Tag(i)),
			Index:    []int{i},
			Owner:    id,
		})
	}

	return info
}

func packageName(p *types.Package) string {
	return p.Name()
}

func namedID(named *types.Named) TypeID {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return TypeID(obj.Name())
	}

	return NewTypeID(obj.Pkg().Path(), obj.Name())
}

// classify mirrors Registry.classify for go/types.
func (a *Analyzer) classify(t types.Type) SemanticType {
	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if e, ok := a.enums[obj]; ok {
			return SemanticType{Kind: SemanticEnum, Basic: basicKind(named.Underlying()), Enum: e}
		}

		if hasDirective(a.docs[obj], AssetDirective) {
			return SemanticType{Kind: SemanticImage}
		}

		switch namedID(named) {
		case "time.Time":
			return SemanticType{Kind: SemanticDateTime}
		case "net/url.URL":
			return SemanticType{Kind: SemanticURL}
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch {
		case u.Info()&types.IsString != 0:
			return SemanticType{Kind: SemanticString}
		case u.Info()&types.IsBoolean != 0:
			return SemanticType{Kind: SemanticBoolean, Basic: reflect.Bool}
		case u.Info()&(types.IsInteger|types.IsFloat) != 0:
			return SemanticType{Kind: SemanticNumeric, Basic: basicKind(u)}
		}
	case *types.Pointer:
		if named, ok := u.Elem().(*types.Named); ok && namedID(named) == "net/url.URL" {
			return SemanticType{Kind: SemanticURL}
		}
	case *types.Slice:
		if b, ok := u.Elem().(*types.Basic); ok && b.Kind() == types.String {
			return SemanticType{Kind: SemanticStringArray}
		}

		return collectionOf(u.Elem(), ElementArray)
	case *types.Map:
		return collectionOf(u.Elem(), ElementDictionary)
	case *types.Array:
		return SemanticType{Kind: SemanticCollection, ElemMode: ElementArray}
	}

	return SemanticType{Kind: SemanticOpaque}
}

func collectionOf(elem types.Type, mode ElementMode) SemanticType {
	st := SemanticType{Kind: SemanticCollection, ElemMode: mode}

	if p, ok := elem.(*types.Pointer); ok {
		if mode == ElementArray {
			st.ElemMode = ElementList
		}

		elem = p.Elem()
	}

	if named, ok := elem.(*types.Named); ok {
		if _, isStruct := named.Underlying().(*types.Struct); isStruct {
			switch id := namedID(named); id {
			case "time.Time", "net/url.URL":
			default:
				st.Elem = id
			}
		}
	}

	return st
}

// basicKind maps a go/types basic kind to its reflect.Kind.
func basicKind(t types.Type) reflect.Kind {
	b, ok := t.(*types.Basic)
	if !ok {
		return reflect.Invalid
	}

	switch b.Kind() {
	case types.Bool:
		return reflect.Bool
	case types.Int:
		return reflect.Int
	case types.Int8:
		return reflect.Int8
	case types.Int16:
		return reflect.Int16
	case types.Int32:
		return reflect.Int32
	case types.Int64:
		return reflect.Int64
	case types.Uint:
		return reflect.Uint
	case types.Uint8:
		return reflect.Uint8
	case types.Uint16:
		return reflect.Uint16
	case types.Uint32:
		return reflect.Uint32
	case types.Uint64:
		return reflect.Uint64
	case types.Uintptr:
		return reflect.Uintptr
	case types.Float32:
		return reflect.Float32
	case types.Float64:
		return reflect.Float64
	case types.String:
		return reflect.String
	default:
		return reflect.Invalid
	}
}

var _ Catalog = (*TypeGraph)(nil)
