package binding

import (
	"maps"
	"slices"

	"xmlbind/descriptor"
	"xmlbind/options"
)

// CurrentVersion is the only schema version understood.
const CurrentVersion = "1"

// File represents the root of a binding file.
type File struct {
	// Version of the binding schema.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Settings configures the serializer and registry.
	Settings Settings `yaml:"settings,omitempty" json:"settings,omitempty"`

	// Types maps a type key (package path, dot, type name) to its annotations.
	Types map[string]TypeBinding `yaml:"types,omitempty" json:"types,omitempty"`
}

// Settings is the settings section. Unset entries keep the defaults of
// options.Default.
type Settings struct {
	Declaration *bool  `yaml:"declaration,omitempty" json:"declaration,omitempty"`
	SelfClose   *bool  `yaml:"self_close,omitempty" json:"self_close,omitempty"`
	MaxDepth    int    `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`
	TagKey      string `yaml:"tag_key,omitempty" json:"tag_key,omitempty"`
}

// TypeBinding annotates one type.
type TypeBinding struct {
	// Root overrides the element name of a struct type.
	Root string `yaml:"root,omitempty" json:"root,omitempty"`

	// Fields maps a Go field name to a tag that replaces its struct tag.
	Fields map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`

	// Variants maps a union variant tag to its element name.
	Variants map[string]string `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// TypeKeys returns the annotated type keys in sorted order.
func (f *File) TypeKeys() []string {
	return slices.Sorted(maps.Keys(f.Types))
}

// Override converts the binding into a registry override.
func (tb TypeBinding) Override() descriptor.TypeOverride {
	return descriptor.TypeOverride{
		Root:     tb.Root,
		Fields:   maps.Clone(tb.Fields),
		Variants: maps.Clone(tb.Variants),
	}
}

// Options returns the serializer settings described by the file.
func (f *File) Options() options.Settings {
	s := options.Default()

	if f.Settings.Declaration != nil {
		s.Flags = setFlag(s.Flags, options.FlagDeclaration, *f.Settings.Declaration)
	}

	if f.Settings.SelfClose != nil {
		s.Flags = setFlag(s.Flags, options.FlagSelfClose, *f.Settings.SelfClose)
	}

	if f.Settings.MaxDepth > 0 {
		s.MaxDepth = f.Settings.MaxDepth
	}

	return s.Normalize()
}

// RegistryOptions returns the registry options described by the file.
func (f *File) RegistryOptions() []descriptor.Option {
	var opts []descriptor.Option
	if f.Settings.TagKey != "" {
		opts = append(opts, descriptor.WithTagKey(f.Settings.TagKey))
	}

	return opts
}

func setFlag(flags, flag options.FlagEnum, on bool) options.FlagEnum {
	if on {
		return flags | flag
	}

	return flags &^ flag
}
