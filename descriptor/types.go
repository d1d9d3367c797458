package descriptor

import (
	"reflect"
	"strings"

	"xmlbind/internal/common"
	"xmlbind/primitive"
)

// Root is a zero-size marker field type carrying the `root=` option of
// the enclosing struct.
type Root struct{}

// Union is implemented by values of a tagged union. UnionTag returns the
// discriminant of the active variant; the value itself is the payload.
type Union interface {
	UnionTag() string
}

// Role is how a field renders inside its parent element.
type Role int

const (
	RoleElement Role = iota
	RoleAttribute
	RoleText
	RoleFlatten
)

// String returns a human-readable representation of the Role.
func (r Role) String() string {
	switch r {
	case RoleElement:
		return "element"
	case RoleAttribute:
		return "attribute"
	case RoleText:
		return "text"
	case RoleFlatten:
		return "flatten"
	default:
		return common.UnknownStr
	}
}

// Multiplicity is how many values a field holds.
type Multiplicity int

const (
	Single   Multiplicity = iota
	Optional              // pointer or union interface; nil is absent
	Sequence              // slice or array; each item is a sibling element
)

// String returns a human-readable representation of the Multiplicity.
func (m Multiplicity) String() string {
	switch m {
	case Single:
		return "single"
	case Optional:
		return "optional"
	case Sequence:
		return "sequence"
	default:
		return common.UnknownStr
	}
}

// PayloadKind classifies what a field (or variant) carries.
type PayloadKind int

const (
	PayloadUnknown   PayloadKind = iota
	PayloadPrimitive             // single textual value
	PayloadComposite             // nested struct with its own TypeDescriptor
	PayloadEnum                  // tagged union with an EnumDescriptor
	PayloadCustom                // type emits itself through sink.Marshaler
)

// String returns a human-readable representation of the PayloadKind.
func (k PayloadKind) String() string {
	switch k {
	case PayloadPrimitive:
		return "primitive"
	case PayloadComposite:
		return "composite"
	case PayloadEnum:
		return "enum"
	case PayloadCustom:
		return "custom"
	default:
		return common.UnknownStr
	}
}

// Payload describes the base type of a field after pointer and slice
// unwrapping.
type Payload struct {
	Kind      PayloadKind
	Type      reflect.Type
	Primitive primitive.KindEnum // for PayloadPrimitive
	Struct    *TypeDescriptor    // for PayloadComposite
	Enum      *EnumDescriptor    // for PayloadEnum
}

// Textual reports whether the payload always renders as a single text value.
func (p Payload) Textual() bool {
	switch p.Kind {
	case PayloadPrimitive:
		return true
	case PayloadEnum:
		return p.Enum.Textual()
	default:
		return false
	}
}

// TypeDescriptor describes one struct type.
type TypeDescriptor struct {
	Type   reflect.Type
	Name   string // resolved element name
	Fields []FieldDescriptor
}

// Attributes returns the attribute fields in declared order.
func (d *TypeDescriptor) Attributes() []*FieldDescriptor {
	return d.filter(func(f *FieldDescriptor) bool { return f.Role == RoleAttribute })
}

// Text returns the text field, or nil.
func (d *TypeDescriptor) Text() *FieldDescriptor {
	for i := range d.Fields {
		if d.Fields[i].Role == RoleText {
			return &d.Fields[i]
		}
	}

	return nil
}

// Body returns the element and flatten fields in declared order.
func (d *TypeDescriptor) Body() []*FieldDescriptor {
	return d.filter(func(f *FieldDescriptor) bool {
		return f.Role == RoleElement || f.Role == RoleFlatten
	})
}

// Field returns the descriptor of the Go field goName, or nil.
func (d *TypeDescriptor) Field(goName string) *FieldDescriptor {
	for i := range d.Fields {
		if d.Fields[i].GoName == goName {
			return &d.Fields[i]
		}
	}

	return nil
}

func (d *TypeDescriptor) filter(keep func(*FieldDescriptor) bool) []*FieldDescriptor {
	var out []*FieldDescriptor
	for i := range d.Fields {
		if keep(&d.Fields[i]) {
			out = append(out, &d.Fields[i])
		}
	}

	return out
}

// FieldDescriptor describes one field of a TypeDescriptor.
type FieldDescriptor struct {
	GoName       string
	Index        int // index in the Go struct
	Name         string
	Role         Role
	Multiplicity Multiplicity
	Payload      Payload
	// InAttribute is set for attribute fields and for flattened unions
	// rendered as an attribute named after the active variant.
	InAttribute bool
}

// VariantKind is the payload shape of a union variant.
type VariantKind int

const (
	VariantUnit     VariantKind = iota // no data
	VariantValue                       // the variant value renders as one value
	VariantSequence                    // the variant value is a slice of sibling elements
)

// String returns a human-readable representation of the VariantKind.
func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "unit"
	case VariantValue:
		return "value"
	case VariantSequence:
		return "sequence"
	default:
		return common.UnknownStr
	}
}

// VariantDescriptor describes one variant of a tagged union.
type VariantDescriptor struct {
	Tag  string
	Name string // resolved name; rename else Tag
	Kind VariantKind
	// Type is the Go type of the variant value for Value and Sequence
	// variants. For Sequence it is a slice type.
	Type reflect.Type
	// Item is the payload of the value, or of each item for Sequence.
	Item Payload
}

// EnumDescriptor describes a tagged union.
type EnumDescriptor struct {
	Type     reflect.Type
	Variants []VariantDescriptor

	byTag    map[string]int
	resolved bool
}

// Variant returns the variant registered under tag.
func (e *EnumDescriptor) Variant(tag string) (*VariantDescriptor, bool) {
	i, ok := e.byTag[tag]
	if !ok {
		return nil, false
	}

	return &e.Variants[i], true
}

// Textual reports whether every variant renders as a single text value,
// which is what attribute and text positions require.
func (e *EnumDescriptor) Textual() bool {
	for i := range e.Variants {
		v := &e.Variants[i]
		switch v.Kind {
		case VariantUnit:
		case VariantValue:
			if !v.Item.Textual() {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// TypeKey identifies t by package path and name, e.g. "xmlbind/examples/calendar.Date".
func TypeKey(t reflect.Type) string {
	name := TypeName(t)
	if t.PkgPath() == "" {
		return name
	}

	return t.PkgPath() + "." + name
}

// TypeName returns the Go name of t without type arguments.
func TypeName(t reflect.Type) string {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}

	return name
}
