package analyze

import (
	"go/types"

	"xmlbind/descriptor"
)

// shapeOf mirrors the runtime field classification on go/types: pointers
// and union interfaces are Optional, slices and arrays (except []byte) are
// Sequence. It also returns the payload type.
//
// Union registration happens at run time, so every type with a UnionTag
// method is taken for a registered union whose variants are textual. The
// static check thereby only reports definite violations.
func shapeOf(t types.Type) (descriptor.Shape, types.Type, error) {
	if kind, ok := payloadOf(t); ok {
		mult := descriptor.Single
		if _, iface := t.Underlying().(*types.Interface); iface {
			mult = descriptor.Optional
		}

		return shape(mult, kind), t, nil
	}

	switch u := t.Underlying().(type) {
	case *types.Pointer:
		kind, err := required(u.Elem())
		return shape(descriptor.Optional, kind), u.Elem(), err

	case *types.Slice:
		elem := itemType(u.Elem())
		kind, err := required(elem)

		return shape(descriptor.Sequence, kind), elem, err

	case *types.Array:
		elem := itemType(u.Elem())
		kind, err := required(elem)

		return shape(descriptor.Sequence, kind), elem, err

	case *types.Interface:
		return descriptor.Shape{}, t, descriptor.ErrUnregisteredUnion

	default:
		return descriptor.Shape{}, t, descriptor.ErrUnsupportedType
	}
}

func shape(mult descriptor.Multiplicity, kind descriptor.PayloadKind) descriptor.Shape {
	return descriptor.Shape{
		Multiplicity: mult,
		Payload:      kind,
		Textual:      kind == descriptor.PayloadEnum,
	}
}

func itemType(t types.Type) types.Type {
	if p, ok := t.Underlying().(*types.Pointer); ok {
		return p.Elem()
	}

	return t
}

func required(t types.Type) (descriptor.PayloadKind, error) {
	if kind, ok := payloadOf(t); ok {
		return kind, nil
	}

	if _, iface := t.Underlying().(*types.Interface); iface {
		return descriptor.PayloadUnknown, descriptor.ErrUnregisteredUnion
	}

	return descriptor.PayloadUnknown, descriptor.ErrUnsupportedType
}

// payloadOf classifies a non-pointer type. Custom emission wins over
// union, which wins over primitive and struct rendering.
func payloadOf(t types.Type) (descriptor.PayloadKind, bool) {
	if _, ptr := t.Underlying().(*types.Pointer); ptr {
		return descriptor.PayloadUnknown, false
	}

	switch {
	case hasMethod(t, "MarshalXMLBind"):
		return descriptor.PayloadCustom, true
	case hasMethod(t, "UnionTag"):
		return descriptor.PayloadEnum, true
	case isPrimitive(t):
		return descriptor.PayloadPrimitive, true
	}

	if _, ok := t.Underlying().(*types.Struct); ok {
		return descriptor.PayloadComposite, true
	}

	return descriptor.PayloadUnknown, false
}

func isPrimitive(t types.Type) bool {
	if named, ok := t.(*types.Named); ok && named.Obj().Pkg() != nil && named.Obj().Pkg().Path() == "time" {
		if name := named.Obj().Name(); name == "Time" || name == "Duration" {
			return true
		}
	}

	if hasMethod(t, "MarshalText") {
		return true
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		return u.Info()&(types.IsBoolean|types.IsInteger|types.IsFloat|types.IsString) != 0 &&
			u.Kind() != types.Uintptr
	case *types.Slice:
		b, ok := u.Elem().Underlying().(*types.Basic)
		return ok && b.Kind() == types.Byte
	default:
		return false
	}
}

// hasMethod reports whether t or *t has a method called name.
func hasMethod(t types.Type, name string) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, true, nil, name)
	_, ok := obj.(*types.Func)

	return ok
}
