package descriptor

import (
	"errors"
	"io"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"xmlbind/primitive"
	"xmlbind/sink"
)

var (
	rootType      = reflect.TypeOf(Root{})
	unionType     = reflect.TypeOf((*Union)(nil)).Elem()
	marshalerType = reflect.TypeOf((*sink.Marshaler)(nil)).Elem()
)

// TypeOverride annotates a type from outside its declaration. Field
// entries replace the struct tag of the named Go field entirely.
type TypeOverride struct {
	Root     string
	Fields   map[string]string // Go field name -> tag
	Variants map[string]string // variant tag -> name
}

// Option configures a Registry.
type Option func(*Registry)

// WithTagKey sets the struct tag key, DefaultTagKey by default.
func WithTagKey(key string) Option {
	return func(r *Registry) {
		if key != "" {
			r.tagKey = key
		}
	}
}

// WithLogger sets the logger used for descriptor construction traces.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// Registry builds and caches descriptors. Unions and overrides must be
// registered before the first Describe; afterwards the registry is sealed
// and every descriptor it hands out is immutable. A Registry is safe for
// concurrent use.
type Registry struct {
	tagKey string
	log    logrus.FieldLogger

	mu        sync.RWMutex
	sealed    bool
	types     map[reflect.Type]*TypeDescriptor
	enums     map[reflect.Type]*EnumDescriptor
	overrides map[string]TypeOverride
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Registry{
		tagKey:    DefaultTagKey,
		log:       discard,
		types:     make(map[reflect.Type]*TypeDescriptor),
		enums:     make(map[reflect.Type]*EnumDescriptor),
		overrides: make(map[string]TypeOverride),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// TagKey returns the struct tag key the registry reads.
func (r *Registry) TagKey() string {
	return r.tagKey
}

// RegisterEnum registers the variants of the tagged union t. t is either
// an interface embedding Union, whose variants are the concrete types
// implementing it, or a concrete type implementing Union.
func (r *Registry) RegisterEnum(t reflect.Type, variants ...VariantDescriptor) error {
	key := TypeKey(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return &Error{Type: key, Err: ErrSealed}
	}

	if !implements(t, unionType) {
		return &Error{Type: key, Err: ErrNotUnion}
	}

	e := &EnumDescriptor{
		Type:  t,
		byTag: make(map[string]int, len(variants)),
	}

	for _, v := range variants {
		if v.Tag == "" {
			return &Error{Type: key, Err: ErrEmptyName}
		}

		if _, dup := e.byTag[v.Tag]; dup {
			return &Error{Type: key, Field: v.Tag, Err: ErrDuplicateVariant}
		}

		if err := checkVariantType(t, v); err != nil {
			return &Error{Type: key, Field: v.Tag, Err: err}
		}

		e.byTag[v.Tag] = len(e.Variants)
		e.Variants = append(e.Variants, v)
	}

	r.enums[t] = e
	r.log.WithFields(logrus.Fields{"union": key, "variants": len(e.Variants)}).Debug("registered union")

	return nil
}

func checkVariantType(union reflect.Type, v VariantDescriptor) error {
	if v.Kind == VariantUnit {
		return nil
	}

	if v.Type == nil {
		return ErrVariantType
	}

	if union.Kind() == reflect.Interface {
		if !v.Type.Implements(union) {
			return ErrVariantType
		}
	} else if v.Type != union {
		return ErrVariantType
	}

	if v.Kind == VariantSequence && v.Type.Kind() != reflect.Slice && v.Type.Kind() != reflect.Array {
		return ErrVariantType
	}

	return nil
}

// Override registers annotations for the type identified by key (see TypeKey).
func (r *Registry) Override(key string, o TypeOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return &Error{Type: key, Err: ErrSealed}
	}

	r.overrides[key] = o

	return nil
}

// Enum returns the union registered for t.
func (r *Registry) Enum(t reflect.Type) (*EnumDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.enums[t]

	return e, ok
}

// Describe returns the descriptor of struct type t (pointers are
// dereferenced), building the descriptors of every type reachable from it
// on first use.
func (r *Registry) Describe(t reflect.Type) (*TypeDescriptor, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.RLock()
	d, ok := r.types[t]
	r.mu.RUnlock()

	if ok {
		return d, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sealed = true

	if d, ok := r.types[t]; ok {
		return d, nil
	}

	b := &builder{r: r, resolving: make(map[*EnumDescriptor]bool)}

	d, err := b.describe(t)
	if err != nil {
		b.rollback()
		return nil, err
	}

	b.commit()

	return d, nil
}

// builder constructs one descriptor graph under the registry write lock.
type builder struct {
	r         *Registry
	added     []reflect.Type
	resolving map[*EnumDescriptor]bool
	enums     []*EnumDescriptor
}

func (b *builder) rollback() {
	for _, t := range b.added {
		delete(b.r.types, t)
	}
}

func (b *builder) commit() {
	for _, e := range b.enums {
		e.resolved = true
	}
}

func (b *builder) describe(t reflect.Type) (*TypeDescriptor, error) {
	if d, ok := b.r.types[t]; ok {
		return d, nil
	}

	key := TypeKey(t)
	if t.Kind() != reflect.Struct {
		return nil, &Error{Type: key, Err: ErrNotStruct}
	}

	// pre-cache for recursive types; fields are filled below
	d := &TypeDescriptor{Type: t, Name: TypeName(t)}
	b.r.types[t] = d
	b.added = append(b.added, t)

	override := b.r.overrides[key]
	texts := 0

	for i := range t.NumField() {
		sf := t.Field(i)

		tag := sf.Tag.Get(b.r.tagKey)
		if o, ok := override.Fields[sf.Name]; ok {
			tag = o
		}

		a, err := ParseTag(tag)
		if err != nil {
			return nil, &Error{Type: key, Field: sf.Name, Err: err}
		}

		if sf.Type == rootType {
			if a.Root != "" {
				d.Name = a.Root
			}

			continue
		}

		if a.Skip || !sf.IsExported() {
			continue
		}

		f, err := b.field(sf, a)
		if err != nil {
			return nil, wrap(key, sf.Name, err)
		}

		if f.Role == RoleText {
			texts++
			if texts > 1 {
				return nil, &Error{Type: key, Field: sf.Name, Err: ErrMultipleText}
			}
		}

		d.Fields = append(d.Fields, f)
	}

	if override.Root != "" {
		d.Name = override.Root
	}

	if field, err := checkSplices(d); err != nil {
		return nil, &Error{Type: key, Field: field, Err: err}
	}

	b.r.log.WithFields(logrus.Fields{
		"type":    key,
		"element": d.Name,
		"fields":  len(d.Fields),
	}).Debug("built type descriptor")

	return d, nil
}

func (b *builder) field(sf reflect.StructField, a Annotation) (FieldDescriptor, error) {
	mult, payload, err := b.resolveField(sf.Type)
	if err != nil {
		return FieldDescriptor{}, err
	}

	embedded := sf.Anonymous && payload.Kind == PayloadComposite

	shape := Shape{
		Multiplicity: mult,
		Payload:      payload.Kind,
		Textual:      payload.Kind == PayloadEnum && payload.Enum.Textual(),
	}
	if err := CheckField(a, embedded, shape); err != nil {
		return FieldDescriptor{}, err
	}

	role := a.Role(embedded)

	return FieldDescriptor{
		GoName:       sf.Name,
		Index:        sf.Index[0],
		Name:         orTag(a.Rename, sf.Name),
		Role:         role,
		Multiplicity: mult,
		Payload:      payload,
		InAttribute:  role == RoleAttribute || (role == RoleFlatten && a.Attribute),
	}, nil
}

func (b *builder) resolveField(t reflect.Type) (Multiplicity, Payload, error) {
	p, ok, err := b.payload(t, true)
	if err != nil {
		return 0, Payload{}, err
	}

	if ok {
		if t.Kind() == reflect.Interface {
			return Optional, p, nil
		}

		return Single, p, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		p, err := b.required(t.Elem())
		return Optional, p, err

	case reflect.Slice, reflect.Array:
		elem := t.Elem()
		if elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}

		p, err := b.required(elem)

		return Sequence, p, err

	case reflect.Interface:
		return 0, Payload{}, ErrUnregisteredUnion

	default:
		return 0, Payload{}, ErrUnsupportedType
	}
}

func (b *builder) required(t reflect.Type) (Payload, error) {
	p, ok, err := b.payload(t, true)
	if err != nil {
		return Payload{}, err
	}

	if !ok {
		if t.Kind() == reflect.Interface {
			return Payload{}, ErrUnregisteredUnion
		}

		return Payload{}, ErrUnsupportedType
	}

	return p, nil
}

// payload classifies a non-pointer type. Custom emission wins over union
// registration, which wins over primitive and struct rendering.
func (b *builder) payload(t reflect.Type, allowEnum bool) (Payload, bool, error) {
	if t.Kind() == reflect.Pointer {
		return Payload{}, false, nil
	}

	if implements(t, marshalerType) {
		return Payload{Kind: PayloadCustom, Type: t}, true, nil
	}

	if allowEnum {
		if e, ok := b.r.enums[t]; ok {
			if err := b.resolveEnum(e); err != nil {
				return Payload{}, false, err
			}

			return Payload{Kind: PayloadEnum, Type: t, Enum: e}, true, nil
		}
	}

	if k := primitive.FromReflectType(t); k != 0 {
		return Payload{Kind: PayloadPrimitive, Type: t, Primitive: k}, true, nil
	}

	if t.Kind() == reflect.Struct {
		d, err := b.describe(t)
		if err != nil {
			return Payload{}, false, err
		}

		return Payload{Kind: PayloadComposite, Type: t, Struct: d}, true, nil
	}

	return Payload{}, false, nil
}

func (b *builder) resolveEnum(e *EnumDescriptor) error {
	if e.resolved || b.resolving[e] {
		return nil
	}

	b.resolving[e] = true
	b.enums = append(b.enums, e)

	key := TypeKey(e.Type)
	override := b.r.overrides[key]

	for i := range e.Variants {
		v := &e.Variants[i]
		if name, ok := override.Variants[v.Tag]; ok && name != "" {
			v.Name = name
		}

		var t reflect.Type

		switch v.Kind {
		case VariantUnit:
			continue
		case VariantValue:
			t = v.Type
		case VariantSequence:
			t = v.Type.Elem()
		}

		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		// a concrete union carrying itself renders through its underlying kind
		p, ok, err := b.payload(t, t != e.Type)
		if err != nil {
			return wrap(key, v.Tag, err)
		}

		if !ok {
			return &Error{Type: key, Field: v.Tag, Err: ErrUnsupportedType}
		}

		v.Item = p
	}

	return nil
}

// checkSplices walks the element of d through its flattened structs. A
// spliced struct may not carry text, may not flatten a struct already on
// the current path, and may not bind an attribute name used elsewhere on
// the element. It returns the offending field with the error.
func checkSplices(d *TypeDescriptor) (string, error) {
	w := splices{attrs: map[string]bool{}, path: map[*TypeDescriptor]bool{}}
	return w.walk(d, "")
}

type splices struct {
	attrs map[string]bool
	path  map[*TypeDescriptor]bool
}

func (w splices) walk(d *TypeDescriptor, prefix string) (string, error) {
	w.path[d] = true
	defer delete(w.path, d)

	for i := range d.Fields {
		f := &d.Fields[i]

		switch {
		case f.Role == RoleAttribute:
			if w.attrs[f.Name] {
				return f.Name, ErrDuplicateAttr
			}

			w.attrs[f.Name] = true

		case f.Role == RoleText && prefix != "":
			return prefix + f.GoName, ErrFlattenedText

		case f.Role == RoleFlatten && f.Payload.Kind == PayloadComposite:
			if w.path[f.Payload.Struct] {
				return prefix + f.GoName, ErrFlattenCycle
			}

			if field, err := w.walk(f.Payload.Struct, prefix+f.GoName+"."); err != nil {
				return field, err
			}
		}
	}

	return "", nil
}

func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}

	return t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
}

// wrap attaches type and field context unless err already carries it.
func wrap(typeKey, field string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}

	return &Error{Type: typeKey, Field: field, Err: err}
}
