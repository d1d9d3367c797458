package descriptor

import "reflect"

// Unit declares a data-less variant. An empty name keeps the tag.
func Unit(tag, name string) VariantDescriptor {
	return VariantDescriptor{Tag: tag, Name: orTag(name, tag), Kind: VariantUnit}
}

// Value declares a variant whose value of type T renders as one value:
// text in attribute and text positions, one element named after the
// variant otherwise.
func Value[T any](tag, name string) VariantDescriptor {
	return VariantDescriptor{
		Tag:  tag,
		Name: orTag(name, tag),
		Kind: VariantValue,
		Type: reflect.TypeFor[T](),
	}
}

// SequenceOf declares a variant whose value of slice type S renders as one
// sibling element per item, each named after the variant.
func SequenceOf[S any](tag, name string) VariantDescriptor {
	return VariantDescriptor{
		Tag:  tag,
		Name: orTag(name, tag),
		Kind: VariantSequence,
		Type: reflect.TypeFor[S](),
	}
}

// RegisterUnion registers the variants of union type U with r.
func RegisterUnion[U any](r *Registry, variants ...VariantDescriptor) error {
	return r.RegisterEnum(reflect.TypeFor[U](), variants...)
}

func orTag(name, tag string) string {
	if name == "" {
		return tag
	}

	return name
}
