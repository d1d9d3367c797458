package descriptor

import (
	"errors"
	"strings"
)

var (
	ErrUnknownOption     = errors.New("unknown option")
	ErrUnexpectedValue   = errors.New("option takes no value")
	ErrEmptyName         = errors.New("empty name")
	ErrMisplacedRoot     = errors.New("root option is only valid on a descriptor.Root field")
	ErrConflictingRoles  = errors.New("text cannot be combined with attribute or flatten")
	ErrNotTextual        = errors.New("attribute and text fields need a single textual value")
	ErrFlattenPayload    = errors.New("flatten needs a single struct or union payload")
	ErrFlattenRename     = errors.New("flattened fields have no name of their own")
	ErrMultipleText      = errors.New("more than one text field")
	ErrDuplicateAttr     = errors.New("duplicate attribute name")
	ErrFlattenedText     = errors.New("text field inside a flattened struct")
	ErrFlattenCycle      = errors.New("flattened struct contains itself")
	ErrUnsupportedType   = errors.New("unsupported field type")
	ErrUnregisteredUnion = errors.New("interface field without a registered union")
	ErrNotUnion          = errors.New("type does not implement descriptor.Union")
	ErrVariantType       = errors.New("variant type does not belong to the union")
	ErrDuplicateVariant  = errors.New("duplicate variant tag")
	ErrNotStruct         = errors.New("type is not a struct")
	ErrSealed            = errors.New("registry is sealed after the first Describe")
)

// Error locates a descriptor build failure.
type Error struct {
	Type  string // type key
	Field string // Go field name or variant tag, if any
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("descriptor: ")
	b.WriteString(e.Type)
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
