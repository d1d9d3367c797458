package analyze

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"reflect"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// RootTypeID is the marker type carrying the root element name.
var RootTypeID = TypeID{PkgPath: "xmlbind/descriptor", Name: "Root"}

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	log       logrus.FieldLogger
	graph     *TypeGraph
	typeCache map[types.Type]*TypeInfo // Cache to handle recursive types
	fset      *token.FileSet           // file set of the load being processed
}

// NewAnalyzer creates a new Analyzer. log may be nil.
func NewAnalyzer(log logrus.FieldLogger) *Analyzer {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}

	return &Analyzer{
		log:   log,
		graph: NewTypeGraph(),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./...",
// "xmlbind/examples/calendar"); each is loaded concurrently.
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) (*TypeGraph, error) {
	results := make([][]*packages.Package, len(patterns))

	g, gctx := errgroup.WithContext(ctx)
	for i, pattern := range patterns {
		g.Go(func() error {
			cfg := &packages.Config{
				Mode:    LoadMode,
				Context: gctx,
			}

			pkgs, err := packages.Load(cfg, pattern)
			if err != nil {
				return fmt.Errorf("failed to load packages %s: %w", pattern, err)
			}

			results[i] = pkgs

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Check for package errors
	var errs []error
	for _, pkgs := range results {
		for _, pkg := range pkgs {
			for _, e := range pkg.Errors {
				errs = append(errs, e)
			}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	for _, pkgs := range results {
		for _, pkg := range pkgs {
			if _, ok := a.graph.Packages[pkg.PkgPath]; !ok {
				a.graph.Packages[pkg.PkgPath] = &PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
			}
		}
	}

	// Types from different loads are distinct objects, so every load gets
	// its own cache and file set.
	for _, pkgs := range results {
		a.typeCache = make(map[types.Type]*TypeInfo)

		for _, pkg := range pkgs {
			a.fset = pkg.Fset
			a.processPackage(pkg)
		}
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts types from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := a.graph.Packages[pkg.PkgPath]

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)

		// Only process type names (not variables, constants, functions)
		typeName, ok := obj.(*types.TypeName)
		if !ok || typeName.IsAlias() {
			continue
		}

		// Only process exported types
		if !typeName.Exported() {
			continue
		}

		typeID := TypeID{
			PkgPath: pkg.PkgPath,
			Name:    name,
		}

		if _, seen := a.graph.Types[typeID]; seen {
			continue
		}

		typeInfo := a.analyzeType(typeName.Type())
		typeInfo.ID = typeID
		typeInfo.Pos = a.fset.Position(typeName.Pos())

		a.graph.Types[typeID] = typeInfo
		pkgInfo.Types = append(pkgInfo.Types, typeID)
	}

	a.log.WithFields(logrus.Fields{
		"package": pkg.PkgPath,
		"types":   len(pkgInfo.Types),
	}).Debug("analyzed package")
}

// analyzeType recursively analyzes a go/types.Type and returns a TypeInfo.
func (a *Analyzer) analyzeType(t types.Type) *TypeInfo {
	t = types.Unalias(t)

	// Check cache to handle recursive types
	if cached, ok := a.typeCache[t]; ok {
		return cached
	}

	info := &TypeInfo{
		GoType: t,
	}

	// Pre-cache to handle recursive types (we'll fill in details)
	a.typeCache[t] = info

	switch tt := t.(type) {
	case *types.Named:
		a.analyzeNamedType(tt, info)

	case *types.Basic:
		info.Kind = TypeKindBasic

	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Slice:
		info.Kind = TypeKindSlice
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Array:
		info.Kind = TypeKindArray
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(tt, info)

	case *types.Interface:
		info.Kind = TypeKindInterface

	case *types.Map:
		info.Kind = TypeKindMap

	default:
		// Channels, functions, etc. are marked as unknown (unsupported)
		info.Kind = TypeKindUnknown
	}

	return info
}

// analyzeNamedType analyzes a named type.
func (a *Analyzer) analyzeNamedType(named *types.Named, info *TypeInfo) {
	obj := named.Obj()
	if obj.Pkg() != nil {
		info.ID = TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
	} else {
		info.ID = TypeID{Name: obj.Name()}
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		info.Kind = TypeKindStruct
		if !a.isExternalPackage(info.ID.PkgPath) {
			a.analyzeStructFields(ut, info)
		}

	case *types.Interface:
		info.Kind = TypeKindInterface

	default:
		if a.isExternalPackage(info.ID.PkgPath) {
			info.Kind = TypeKindExternal
		} else {
			// Named type wrapping something else in our packages
			info.Kind = TypeKindAlias
		}

		info.Underlying = a.analyzeType(ut)
	}
}

// isExternalPackage returns true if the package is not in our analyzed set.
func (a *Analyzer) isExternalPackage(pkgPath string) bool {
	_, ok := a.graph.Packages[pkgPath]
	return !ok
}

// analyzeStructFields extracts fields from a struct type. Unexported
// fields are kept only when they carry the root marker.
func (a *Analyzer) analyzeStructFields(st *types.Struct, info *TypeInfo) {
	for i := range st.NumFields() {
		field := st.Field(i)

		if !field.Exported() && !isRootMarker(field.Type()) {
			continue
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name(),
			Exported: field.Exported(),
			Type:     a.analyzeType(field.Type()),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Index:    i,
			Pos:      a.fset.Position(field.Pos()),
		})
	}
}

// GetStruct returns the TypeInfo for a named struct.
func (a *Analyzer) GetStruct(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}

	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}

	if info.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is not a struct (kind: %s)", id, info.Kind)
	}

	return info, nil
}

func isRootMarker(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}

	return named.Obj().Pkg().Path() == RootTypeID.PkgPath && named.Obj().Name() == RootTypeID.Name
}
