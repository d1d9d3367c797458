package options

// FlagEnum is a set of output switches for the serializer.
type FlagEnum int

const (
	FlagDeclaration FlagEnum = 1 << iota // write <?xml version="1.0" encoding="utf-8"?> before the root element
	FlagSelfClose                        // render elements without body as <name />, otherwise as <name></name>

	FlagAll  FlagEnum = (1 << iota) - 1 // all flags combined
	FlagNone FlagEnum = 0               // no flags selected
)

// Has reports whether every flag of f is set.
func (s FlagEnum) Has(f FlagEnum) bool {
	return s&f == f
}

// DefaultMaxDepth bounds element nesting; cyclic values hit it instead of
// recursing without end.
const DefaultMaxDepth = 512

// MaxDepthLimit is the largest nesting guard a configuration may ask for.
const MaxDepthLimit = 1 << 16

// Settings configure one serializer.
type Settings struct {
	Flags    FlagEnum
	MaxDepth int
}

// Default returns the settings producing the canonical compact document.
func Default() Settings {
	return Settings{
		Flags:    FlagAll,
		MaxDepth: DefaultMaxDepth,
	}
}

// Normalize replaces unset limits with their defaults.
func (s Settings) Normalize() Settings {
	if s.MaxDepth <= 0 {
		s.MaxDepth = DefaultMaxDepth
	}

	return s
}
