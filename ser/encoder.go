package ser

import (
	"fmt"
	"reflect"

	"xmlbind/descriptor"
	"xmlbind/primitive"
	"xmlbind/sink"
)

var unionType = reflect.TypeOf((*descriptor.Union)(nil)).Elem()

// encoder walks one value. It is created per call and owns its sink.
type encoder struct {
	out       *tracker
	depth     int
	maxDepth  int
	selfClose bool
}

func (e *encoder) enter() error {
	e.depth++
	if e.depth > e.maxDepth {
		return ErrMaxDepth
	}

	return nil
}

func (e *encoder) leave() {
	e.depth--
}

// element emits v as a complete element named name.
func (e *encoder) element(name string, v reflect.Value, d *descriptor.TypeDescriptor) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	if err := e.out.StartElement(name); err != nil {
		return err
	}

	// attributes are bound at open time, before any body event
	if err := e.attributes(v, d); err != nil {
		return err
	}

	mark := e.out.events
	if err := e.body(v, d); err != nil {
		return err
	}

	return e.end(mark)
}

func (e *encoder) end(mark int) error {
	if e.selfClose && e.out.events == mark {
		return e.out.EndEmptyElement()
	}

	return e.out.EndElement()
}

// attributes emits the attribute set of d for v, including the attributes
// of flattened fields at their declared position.
func (e *encoder) attributes(v reflect.Value, d *descriptor.TypeDescriptor) error {
	for i := range d.Fields {
		f := &d.Fields[i]

		switch {
		case f.Role == descriptor.RoleAttribute:
			fv, ok := deref(v.Field(f.Index))
			if !ok {
				continue
			}

			text, err := e.text(fv, f.Payload)
			if err != nil {
				return err
			}

			if err := e.out.Attribute(f.Name, text); err != nil {
				return err
			}

		case f.Role == descriptor.RoleFlatten && f.InAttribute:
			fv, ok := deref(v.Field(f.Index))
			if !ok {
				continue
			}

			if err := e.variantAttribute(fv, f.Payload.Enum); err != nil {
				return err
			}

		case f.Role == descriptor.RoleFlatten && f.Payload.Kind == descriptor.PayloadComposite:
			fv, ok := deref(v.Field(f.Index))
			if !ok {
				continue
			}

			if err := e.enter(); err != nil {
				return err
			}

			err := e.attributes(fv, f.Payload.Struct)
			e.leave()

			if err != nil {
				return err
			}
		}
	}

	return nil
}

// variantAttribute renders the active variant of a flattened union as an
// attribute named after it. Unit variants contribute nothing.
func (e *encoder) variantAttribute(v reflect.Value, enum *descriptor.EnumDescriptor) error {
	variant, err := activeVariant(v, enum)
	if err != nil {
		return err
	}

	if variant.Kind != descriptor.VariantValue {
		return nil
	}

	item, ok := deref(v)
	if !ok {
		return nil
	}

	text, err := e.text(item, variant.Item)
	if err != nil {
		return err
	}

	return e.out.Attribute(variant.Name, text)
}

// body emits the text field of d, then every element and flattened field
// in declared order.
func (e *encoder) body(v reflect.Value, d *descriptor.TypeDescriptor) error {
	if f := d.Text(); f != nil {
		if fv, ok := deref(v.Field(f.Index)); ok {
			text, err := e.text(fv, f.Payload)
			if err != nil {
				return err
			}

			if text != "" {
				if err := e.out.Characters(text); err != nil {
					return err
				}
			}
		}
	}

	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Role != descriptor.RoleElement && f.Role != descriptor.RoleFlatten {
			continue
		}

		if f.InAttribute {
			continue
		}

		if err := e.field(v.Field(f.Index), f); err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) field(fv reflect.Value, f *descriptor.FieldDescriptor) error {
	if f.Multiplicity == descriptor.Sequence {
		return e.sequence(f.Name, fv, f.Payload)
	}

	fv, ok := deref(fv)
	if !ok {
		return nil
	}

	if f.Role == descriptor.RoleFlatten {
		return e.flatten(fv, f.Payload)
	}

	return e.value(f.Name, fv, f.Payload)
}

// sequence emits one sibling element per item, without a wrapper.
// Nil items are skipped.
func (e *encoder) sequence(name string, items reflect.Value, p descriptor.Payload) error {
	items, ok := deref(items)
	if !ok {
		return nil
	}

	for i := range items.Len() {
		item, ok := deref(items.Index(i))
		if !ok {
			continue
		}

		if err := e.value(name, item, p); err != nil {
			return err
		}
	}

	return nil
}

// flatten splices the body of a struct or the active variant of a union
// into the current element.
func (e *encoder) flatten(v reflect.Value, p descriptor.Payload) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	switch p.Kind {
	case descriptor.PayloadComposite:
		return e.body(v, p.Struct)

	case descriptor.PayloadEnum:
		variant, err := activeVariant(v, p.Enum)
		if err != nil {
			return err
		}

		return e.variant(v, variant)

	default:
		return fmt.Errorf("ser: cannot flatten %s payload", p.Kind)
	}
}

// value emits one value as an element named name.
func (e *encoder) value(name string, v reflect.Value, p descriptor.Payload) error {
	switch p.Kind {
	case descriptor.PayloadCustom:
		return e.hook(v)

	case descriptor.PayloadComposite:
		return e.element(name, v, p.Struct)

	case descriptor.PayloadEnum:
		return e.unionElement(name, v, p.Enum)

	case descriptor.PayloadPrimitive:
		text, err := e.text(v, p)
		if err != nil {
			return err
		}

		return e.textElement(name, text)

	default:
		return fmt.Errorf("ser: cannot render %s payload", p.Kind)
	}
}

func (e *encoder) textElement(name, text string) error {
	if err := e.out.StartElement(name); err != nil {
		return err
	}

	mark := e.out.events
	if text != "" {
		if err := e.out.Characters(text); err != nil {
			return err
		}
	}

	return e.end(mark)
}

// unionElement emits a union field as an element named after the field.
// A unit variant becomes the element text; other variants become its body.
func (e *encoder) unionElement(name string, v reflect.Value, enum *descriptor.EnumDescriptor) error {
	variant, err := activeVariant(v, enum)
	if err != nil {
		return err
	}

	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	if err := e.out.StartElement(name); err != nil {
		return err
	}

	mark := e.out.events

	if variant.Kind == descriptor.VariantUnit {
		if err := e.out.Characters(variant.Name); err != nil {
			return err
		}
	} else if err := e.variant(v, variant); err != nil {
		return err
	}

	return e.end(mark)
}

// variant emits what the active variant contributes to a body: nothing for
// a unit, one element named after the variant for a value, one such
// element per item for a sequence.
func (e *encoder) variant(v reflect.Value, variant *descriptor.VariantDescriptor) error {
	switch variant.Kind {
	case descriptor.VariantValue:
		item, ok := deref(v)
		if !ok {
			return nil
		}

		return e.value(variant.Name, item, variant.Item)

	case descriptor.VariantSequence:
		return e.sequence(variant.Name, v, variant.Item)

	default:
		return nil
	}
}

// text renders a textual payload.
func (e *encoder) text(v reflect.Value, p descriptor.Payload) (string, error) {
	switch p.Kind {
	case descriptor.PayloadPrimitive:
		return primitive.Format(p.Primitive, v)

	case descriptor.PayloadEnum:
		variant, err := activeVariant(v, p.Enum)
		if err != nil {
			return "", err
		}

		if variant.Kind == descriptor.VariantUnit {
			return variant.Name, nil
		}

		item, ok := deref(v)
		if !ok {
			return "", nil
		}

		return e.text(item, variant.Item)

	default:
		return "", fmt.Errorf("ser: %s payload has no textual form", p.Kind)
	}
}

func (e *encoder) hook(v reflect.Value) error {
	m := addressable(v, marshalerType).(sink.Marshaler)
	return m.MarshalXMLBind(e.out)
}

// activeVariant dispatches on the union tag of v.
func activeVariant(v reflect.Value, enum *descriptor.EnumDescriptor) (*descriptor.VariantDescriptor, error) {
	u, ok := addressable(v, unionType).(descriptor.Union)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not implement descriptor.Union", ErrUnknownVariant, v.Type())
	}

	tag := u.UnionTag()

	variant, ok := enum.Variant(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q of %s", ErrUnknownVariant, tag, descriptor.TypeKey(enum.Type))
	}

	return variant, nil
}
