package descriptor

import (
	"fmt"
	"strings"

	"xmlbind/utils"
)

// DefaultTagKey is the struct tag key read by a Registry.
const DefaultTagKey = "xmlbind"

// Option names recognized in a tag.
const (
	OptRoot      = "root"
	OptAttribute = "attribute"
	OptRename    = "rename"
	OptText      = "text"
	OptFlatten   = "flatten"
)

// Options lists every recognized option name.
var Options = []string{OptRoot, OptAttribute, OptRename, OptText, OptFlatten}

// Annotation is a parsed tag.
type Annotation struct {
	Root      string
	Rename    string
	Attribute bool
	Text      bool
	Flatten   bool
	Skip      bool
}

// OptionError reports a malformed option inside a tag.
type OptionError struct {
	Option string
	Err    error
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("option %q: %v", e.Option, e.Err)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}

// ParseTag parses the value of an xmlbind struct tag.
func ParseTag(tag string) (Annotation, error) {
	var a Annotation

	tag = strings.TrimSpace(tag)
	if tag == "" {
		return a, nil
	}

	if tag == "-" {
		a.Skip = true
		return a, nil
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value := utils.Unpack2(strings.SplitN(part, "=", 2))
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		hasValue := strings.Contains(part, "=")

		switch key {
		case OptRoot, OptRename:
			if value == "" {
				return Annotation{}, &OptionError{Option: key, Err: ErrEmptyName}
			}

			if key == OptRoot {
				a.Root = value
			} else {
				a.Rename = value
			}

		case OptAttribute, OptText, OptFlatten:
			if hasValue {
				return Annotation{}, &OptionError{Option: key, Err: ErrUnexpectedValue}
			}

			switch key {
			case OptAttribute:
				a.Attribute = true
			case OptText:
				a.Text = true
			case OptFlatten:
				a.Flatten = true
			}

		default:
			return Annotation{}, &OptionError{Option: key, Err: ErrUnknownOption}
		}
	}

	return a, nil
}

// Role resolves the field role. Embedded fields default to RoleFlatten.
func (a Annotation) Role(embedded bool) Role {
	switch {
	case a.Text:
		return RoleText
	case a.Flatten:
		return RoleFlatten
	case a.Attribute:
		return RoleAttribute
	case embedded:
		return RoleFlatten
	default:
		return RoleElement
	}
}

// Shape is what the field's Go type resolves to, independent of its tag.
type Shape struct {
	Multiplicity Multiplicity
	Payload      PayloadKind
	// Textual is meaningful for PayloadEnum: every variant renders as a
	// single text value.
	Textual bool
}

// CheckField validates an annotation against the field shape. The runtime
// registry and the static checker share it so both reject the same sets.
func CheckField(a Annotation, embedded bool, s Shape) error {
	if a.Root != "" {
		return ErrMisplacedRoot
	}

	if a.Text && (a.Attribute || a.Flatten) {
		return ErrConflictingRoles
	}

	switch a.Role(embedded) {
	case RoleAttribute, RoleText:
		if s.Multiplicity == Sequence || !textual(s) {
			return ErrNotTextual
		}

	case RoleFlatten:
		if s.Multiplicity == Sequence {
			return ErrFlattenPayload
		}

		if a.Attribute {
			// flattened into an attribute named after the active variant
			if s.Payload != PayloadEnum || !s.Textual {
				return ErrNotTextual
			}

			return nil
		}

		if s.Payload != PayloadComposite && s.Payload != PayloadEnum {
			return ErrFlattenPayload
		}

		if a.Rename != "" {
			return ErrFlattenRename
		}

	case RoleElement:
	}

	return nil
}

func textual(s Shape) bool {
	switch s.Payload {
	case PayloadPrimitive:
		return true
	case PayloadEnum:
		return s.Textual
	default:
		return false
	}
}
