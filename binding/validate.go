package binding

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"xmlbind/descriptor"
	"xmlbind/internal/diagnostic"
	"xmlbind/internal/match"
	"xmlbind/options"
	"xmlbind/utils"
)

// Validate checks a binding file on its own: schema version, settings,
// type keys and that every field entry is a well-formed tag. Whether the
// named types and fields exist is checked by the static checker.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("binding_is_nil", "binding file is nil", "", "")
		return res
	}

	if f.Version != CurrentVersion {
		res.AddError("unsupported_version",
			fmt.Sprintf("unsupported version %q, expected %q", f.Version, CurrentVersion), "", "")
	}

	if !utils.IsInRange(0, f.Settings.MaxDepth, options.MaxDepthLimit) {
		res.AddError("invalid_max_depth",
			fmt.Sprintf("max_depth must be between 0 and %d, got %d", options.MaxDepthLimit, f.Settings.MaxDepth),
			"", "settings")
	}

	if key := f.Settings.TagKey; key != "" && strings.ContainsAny(key, " \t\":,") {
		res.AddError("invalid_tag_key", fmt.Sprintf("tag_key %q is not a valid struct tag key", key), "", "settings")
	}

	for _, key := range f.TypeKeys() {
		validateType(res, key, f.Types[key])
	}

	return res
}

func validateType(res *diagnostic.Diagnostics, key string, tb TypeBinding) {
	if i := strings.LastIndexByte(key, '.'); i <= 0 || i == len(key)-1 {
		res.AddError("invalid_type_key",
			fmt.Sprintf("type key %q must be <package path>.<type name>", key), key, "")
	}

	for _, field := range slices.Sorted(maps.Keys(tb.Fields)) {
		tag := tb.Fields[field]
		if field == "" {
			res.AddError("empty_field_name", "field entry without a Go field name", key, "")
			continue
		}

		a, err := descriptor.ParseTag(tag)
		if err != nil {
			res.Add(tagDiagnostic(key, field, err))
			continue
		}

		if a.Root != "" {
			res.AddError("misplaced_root", "root is a type entry, not a field option", key, field)
		}
	}

	for _, tag := range slices.Sorted(maps.Keys(tb.Variants)) {
		if tag == "" || tb.Variants[tag] == "" {
			res.AddError("empty_variant_name",
				fmt.Sprintf("variant %q needs both a tag and a name", tag), key, tag)
		}
	}
}

// tagDiagnostic converts a ParseTag failure into a diagnostic, suggesting
// the closest option name for unknown options.
func tagDiagnostic(typ, field string, err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     "invalid_tag",
		Message:  err.Error(),
		Type:     typ,
		Field:    field,
	}

	var oe *descriptor.OptionError
	if errors.As(err, &oe) && errors.Is(err, descriptor.ErrUnknownOption) {
		d.Code = "unknown_option"
		d.Suggestions = match.Suggest(oe.Option, descriptor.Options, 1)
	}

	return d
}
