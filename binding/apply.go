package binding

import (
	"fmt"

	"xmlbind/descriptor"
	"xmlbind/ser"
)

// Apply validates f and registers its type annotations with reg. It must
// run before the registry describes its first type.
func Apply(f *File, reg *descriptor.Registry) error {
	if err := Validate(f).Error(); err != nil {
		return fmt.Errorf("invalid binding: %w", err)
	}

	for _, key := range f.TypeKeys() {
		if err := reg.Override(key, f.Types[key].Override()); err != nil {
			return err
		}
	}

	return nil
}

// NewSerializer builds a registry configured by f, lets register add the
// unions of the caller's packages, applies the type annotations and
// returns a serializer using the file's settings. register may be nil.
func NewSerializer(f *File, register func(*descriptor.Registry) error, opts ...descriptor.Option) (*ser.Serializer, error) {
	reg := descriptor.NewRegistry(append(f.RegistryOptions(), opts...)...)

	if register != nil {
		if err := register(reg); err != nil {
			return nil, err
		}
	}

	if err := Apply(f, reg); err != nil {
		return nil, err
	}

	return ser.NewWithSettings(reg, f.Options()), nil
}
