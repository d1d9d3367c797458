// Package ser serializes Go values into XML documents driven by the
// descriptors of package descriptor.
//
// A document is the fixed declaration followed by the root element:
//
//	reg := descriptor.NewRegistry()
//	out, err := ser.New(reg).MarshalString(value)
//	// <?xml version="1.0" encoding="utf-8"?><base><item>something</item></base>
//
// Values implementing Marshaler bypass descriptors and emit their own events.
package ser

import (
	"bytes"
	"errors"
	"io"
	"reflect"

	"xmlbind/descriptor"
	"xmlbind/options"
	"xmlbind/sink"
)

// Marshaler is the custom emission hook.
type Marshaler = sink.Marshaler

var (
	ErrNilValue       = errors.New("ser: nil value")
	ErrMaxDepth       = errors.New("ser: maximum nesting depth exceeded")
	ErrUnknownVariant = errors.New("ser: union tag without a registered variant")
)

var marshalerType = reflect.TypeOf((*sink.Marshaler)(nil)).Elem()

// Serializer renders values using the descriptors of one Registry.
// It holds no per-call state and is safe for concurrent use; every call
// gets its own sink.
type Serializer struct {
	reg      *descriptor.Registry
	settings options.Settings
}

// New creates a Serializer with default settings.
func New(reg *descriptor.Registry) *Serializer {
	return NewWithSettings(reg, options.Default())
}

// NewWithSettings creates a Serializer with explicit settings.
func NewWithSettings(reg *descriptor.Registry, settings options.Settings) *Serializer {
	return &Serializer{
		reg:      reg,
		settings: settings.Normalize(),
	}
}

// Registry returns the registry descriptors are taken from.
func (s *Serializer) Registry() *descriptor.Registry {
	return s.reg
}

// Marshal returns the document for v.
func (s *Serializer) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MarshalString returns the document for v as a string.
func (s *Serializer) MarshalString(v any) (string, error) {
	b, err := s.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Encode writes the document for v to w. Descriptor errors are reported
// before anything is written; after a write or hook failure the output
// written so far is incomplete and must be discarded.
func (s *Serializer) Encode(w io.Writer, v any) error {
	root, err := s.root(v)
	if err != nil {
		return err
	}

	x := sink.NewWriter(w)
	if s.settings.Flags.Has(options.FlagDeclaration) {
		if err := x.Declaration(); err != nil {
			return err
		}
	}

	return root.emit(s.encoder(x))
}

// Serialize emits the root element of v to out, without declaration.
func (s *Serializer) Serialize(out sink.Sink, v any) error {
	root, err := s.root(v)
	if err != nil {
		return err
	}

	return root.emit(s.encoder(out))
}

// SerializeDescriptor emits v as an element shaped by d. v must be a
// struct value (or pointer to one) of d's type.
func (s *Serializer) SerializeDescriptor(out sink.Sink, v reflect.Value, d *descriptor.TypeDescriptor) error {
	v, ok := deref(v)
	if !ok {
		return ErrNilValue
	}

	return s.encoder(out).element(d.Name, v, d)
}

func (s *Serializer) encoder(out sink.Sink) *encoder {
	return &encoder{
		out:       &tracker{Sink: out},
		maxDepth:  s.settings.MaxDepth,
		selfClose: s.settings.Flags.Has(options.FlagSelfClose),
	}
}

// rootValue is a resolved document root.
type rootValue struct {
	v    reflect.Value
	desc *descriptor.TypeDescriptor // nil for custom roots
}

func (r rootValue) emit(e *encoder) error {
	if r.desc == nil {
		return e.hook(r.v)
	}

	return e.element(r.desc.Name, r.v, r.desc)
}

func (s *Serializer) root(v any) (rootValue, error) {
	rv, ok := deref(reflect.ValueOf(v))
	if !ok {
		return rootValue{}, ErrNilValue
	}

	if implementsMarshaler(rv.Type()) {
		return rootValue{v: rv}, nil
	}

	d, err := s.reg.Describe(rv.Type())
	if err != nil {
		return rootValue{}, err
	}

	return rootValue{v: rv, desc: d}, nil
}

// tracker counts body events so closing can pick the self-closing form.
type tracker struct {
	sink.Sink
	events int
}

func (t *tracker) StartElement(name string) error {
	t.events++
	return t.Sink.StartElement(name)
}

func (t *tracker) Characters(text string) error {
	t.events++
	return t.Sink.Characters(text)
}

// deref follows pointers and interfaces; ok is false on nil.
func deref(v reflect.Value) (reflect.Value, bool) {
	if !v.IsValid() {
		return v, false
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}

		v = v.Elem()
	}

	return v, true
}

func implementsMarshaler(t reflect.Type) bool {
	return t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType)
}

// addressable returns v, or a pointer to a copy of v, whichever satisfies
// iface.
func addressable(v reflect.Value, iface reflect.Type) any {
	if v.Type().Implements(iface) {
		return v.Interface()
	}

	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)

	return ptr.Interface()
}
