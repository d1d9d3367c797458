package analyze

import (
	"strings"
)

// TypePath builds a readable path string through flattened fields.
// Examples:
//   - "DateTime" for a simple struct
//   - "DateTime.Date" for a flattened field
//   - "DateTime.Date.Extra.Week" for a field spliced in two levels down
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root type name.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Tail returns the path without its root element.
func (p *TypePath) Tail() string {
	if len(p.parts) < 2 {
		return ""
	}

	return strings.Join(p.parts[1:], ".")
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}

// TypeStringer provides methods for creating readable type strings.
type TypeStringer struct{}

// NewTypeStringer creates a new TypeStringer.
func NewTypeStringer() *TypeStringer {
	return &TypeStringer{}
}

// TypeString returns a human-readable string representation of a TypeInfo.
func (s *TypeStringer) TypeString(t *TypeInfo) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case TypeKindBasic:
		return t.GoType.String()

	case TypeKindStruct, TypeKindInterface:
		if t.IsNamed() {
			return t.ID.Name
		}

		return t.Kind.String() + "{...}"

	case TypeKindPointer:
		if t.ElemType != nil {
			return "*" + s.TypeString(t.ElemType)
		}

		return "*<unknown>"

	case TypeKindSlice, TypeKindArray:
		if t.ElemType != nil {
			return "[]" + s.TypeString(t.ElemType)
		}

		return "[]<unknown>"

	case TypeKindAlias:
		if t.IsNamed() {
			return t.ID.Name
		}

		return s.TypeString(t.Underlying)

	case TypeKindExternal:
		if t.IsNamed() {
			return t.ID.Short()
		}

		return t.GoType.String()

	default:
		return t.GoType.String()
	}
}
