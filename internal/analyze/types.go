package analyze

import (
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"xmlbind/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "xmlbind/examples/calendar"
	Name    string // e.g., "Date"
}

// String returns the type key of the TypeID, as used by binding files.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Short returns "pkg.Name" with the last path element only.
func (t TypeID) Short() string {
	if alias := common.PkgAlias(t.PkgPath); alias != "" {
		return alias + "." + t.Name
	}

	return t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown   TypeKind = iota
	TypeKindBasic              // int, string, bool, etc.
	TypeKindStruct             // struct type
	TypeKindPointer            // pointer to another type
	TypeKindSlice              // slice of another type
	TypeKindArray              // array of another type
	TypeKindAlias              // named type wrapping a non-struct type
	TypeKindExternal           // external/opaque type
	TypeKindInterface          // interface type, a union candidate
	TypeKindMap                // map type, never serializable
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	case TypeKindInterface:
		return "interface"
	case TypeKindMap:
		return "map"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID         TypeID      // Unique identifier (empty for unnamed types like *T or []T)
	Kind       TypeKind    // Kind of type
	Underlying *TypeInfo   // For named types, the underlying type
	ElemType   *TypeInfo   // For pointers, slices and arrays, the element type
	Fields     []FieldInfo // For structs, the list of fields
	GoType     types.Type  // The original go/types.Type
	Pos        token.Position
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// Field returns the field named name, or nil.
func (t *TypeInfo) Field(name string) *FieldInfo {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}

	return nil
}

// FieldNames returns the names of the exported fields in declared order.
func (t *TypeInfo) FieldNames() []string {
	var names []string
	for i := range t.Fields {
		if t.Fields[i].Exported {
			names = append(names, t.Fields[i].Name)
		}
	}

	return names
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Exported bool              // Whether the field is exported
	Type     *TypeInfo         // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
	Pos      token.Position    // Declaration position
}

// HasTag returns true if the field has the specified tag.
func (f *FieldInfo) HasTag(key string) bool {
	_, ok := f.Tag.Lookup(key)
	return ok
}

// GetTag returns the value of the specified tag.
func (f *FieldInfo) GetTag(key string) string {
	return f.Tag.Get(key)
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
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

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Lookup resolves a type key ("path/pkg.Name") or a short name
// ("pkg.Name"), the latter only when it is unambiguous.
func (g *TypeGraph) Lookup(key string) *TypeInfo {
	if i := strings.LastIndexByte(key, '.'); i > 0 {
		if info, ok := g.Types[TypeID{PkgPath: key[:i], Name: key[i+1:]}]; ok {
			return info
		}
	}

	var found *TypeInfo
	for id, info := range g.Types {
		if id.Short() == key {
			if found != nil {
				return nil
			}

			found = info
		}
	}

	return found
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package
}
