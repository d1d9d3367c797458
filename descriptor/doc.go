// Package descriptor provides the immutable metadata that drives XML
// serialization: how every field of a struct maps to an attribute, a child
// element, the element's text, or a flattened splice into the parent, and
// how every variant of a tagged union renders.
//
// Descriptors are built once per Go type by a Registry from struct tags
// (key "xmlbind" by default), explicit union registrations and optional
// overrides, and are read-only afterwards.
//
// Key types:
//   - TypeDescriptor: element name plus ordered FieldDescriptors
//   - FieldDescriptor: resolved name, Role, Multiplicity and Payload
//   - EnumDescriptor: ordered VariantDescriptors of a tagged union
//
// # Tag grammar
//
//	Item    string        `xmlbind:"attribute,rename=Item"`
//	Body    string        `xmlbind:"text"`
//	Date    Date          `xmlbind:"flatten"`
//	Skipped string        `xmlbind:"-"`
//	_       descriptor.Root `xmlbind:"root=base"`
//
// Embedded structs without a tag are flattened.
package descriptor
