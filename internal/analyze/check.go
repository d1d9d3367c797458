package analyze

import (
	"errors"
	"fmt"
	"go/types"
	"maps"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"xmlbind/binding"
	"xmlbind/descriptor"
	"xmlbind/internal/diagnostic"
	"xmlbind/internal/match"
)

// Checker validates the annotated structs of a type graph with the same
// rules the runtime registry applies, so mistakes surface at build time.
type Checker struct {
	tagKey  string
	binding *binding.File
	log     logrus.FieldLogger
}

// NewChecker creates a Checker reading tagKey (descriptor.DefaultTagKey
// when empty). b may be nil; its field entries replace struct tags.
func NewChecker(tagKey string, b *binding.File, log logrus.FieldLogger) *Checker {
	if tagKey == "" {
		tagKey = descriptor.DefaultTagKey
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Checker{tagKey: tagKey, binding: b, log: log}
}

// staticField is a field resolved the way the registry would resolve it.
type staticField struct {
	*FieldInfo
	Annotation descriptor.Annotation
	Shape      descriptor.Shape
	Role       descriptor.Role
	XMLName    string
	Payload    types.Type
	Err        error
}

// Check returns diagnostics for every annotated struct of the loaded packages
// and, when a binding file is set, for the binding entries.
func (c *Checker) Check(graph *TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	for _, id := range c.sortedTypes(graph) {
		info := graph.Types[id]
		if !c.annotated(info) {
			continue
		}

		c.log.WithField("type", id.String()).Debug("checking type")
		c.checkType(res, graph, info)
	}

	if c.binding != nil {
		c.checkBinding(res, graph)
	}

	return res
}

func (c *Checker) sortedTypes(graph *TypeGraph) []TypeID {
	var ids []TypeID
	for _, pkg := range graph.Packages {
		ids = append(ids, pkg.Types...)
	}

	slices.SortFunc(ids, func(a, b TypeID) int {
		if c := strings.Compare(a.PkgPath, b.PkgPath); c != 0 {
			return c
		}

		return strings.Compare(a.Name, b.Name)
	})

	return ids
}

// annotated reports whether info is a struct carrying any xmlbind
// annotation, directly or through the binding file.
func (c *Checker) annotated(info *TypeInfo) bool {
	if info.Kind != TypeKindStruct {
		return false
	}

	if _, ok := c.override(info.ID); ok {
		return true
	}

	for i := range info.Fields {
		if info.Fields[i].HasTag(c.tagKey) || isRootMarker(info.Fields[i].Type.GoType) {
			return true
		}
	}

	return false
}

func (c *Checker) override(id TypeID) (binding.TypeBinding, bool) {
	if c.binding == nil {
		return binding.TypeBinding{}, false
	}

	tb, ok := c.binding.Types[id.String()]

	return tb, ok
}

// resolve parses every field of info and classifies it. Skipped and
// unexported fields are dropped; the element name is returned alongside.
func (c *Checker) resolve(info *TypeInfo) (string, []staticField) {
	override, _ := c.override(info.ID)
	element := info.ID.Name

	var fields []staticField

	for i := range info.Fields {
		f := &info.Fields[i]

		tag := f.GetTag(c.tagKey)
		if o, ok := override.Fields[f.Name]; ok {
			tag = o
		}

		a, err := descriptor.ParseTag(tag)
		if err != nil {
			fields = append(fields, staticField{FieldInfo: f, Err: err})
			continue
		}

		if isRootMarker(f.Type.GoType) {
			if a.Root != "" {
				element = a.Root
			}

			continue
		}

		if a.Skip || !f.Exported {
			continue
		}

		sf := staticField{FieldInfo: f, Annotation: a, XMLName: f.Name}
		if a.Rename != "" {
			sf.XMLName = a.Rename
		}

		sf.Shape, sf.Payload, sf.Err = shapeOf(f.Type.GoType)
		if sf.Err == nil {
			embedded := f.Embedded && sf.Shape.Payload == descriptor.PayloadComposite
			sf.Err = descriptor.CheckField(a, embedded, sf.Shape)
			sf.Role = a.Role(embedded)
		}

		fields = append(fields, sf)
	}

	if override.Root != "" {
		element = override.Root
	}

	return element, fields
}

func (c *Checker) checkType(res *diagnostic.Diagnostics, graph *TypeGraph, info *TypeInfo) {
	_, fields := c.resolve(info)
	typ := info.ID.Short()
	texts := 0

	for _, f := range fields {
		if f.Err != nil {
			res.Add(fieldDiagnostic(typ, f.FieldInfo, f.Err))
			continue
		}

		if f.Role == descriptor.RoleText {
			texts++
			if texts > 1 {
				res.Add(fieldDiagnostic(typ, f.FieldInfo, descriptor.ErrMultipleText))
			}
		}
	}

	c.checkSplices(res, graph, info, NewTypePath(typ), map[string]string{}, map[*TypeInfo]bool{})
}

// checkSplices walks the element of info through its flattened structs,
// reporting text fields spliced into the parent, flattens of a struct
// already on the current path and attribute names bound twice.
func (c *Checker) checkSplices(
	res *diagnostic.Diagnostics,
	graph *TypeGraph,
	info *TypeInfo,
	path *TypePath,
	seen map[string]string,
	onPath map[*TypeInfo]bool,
) {
	onPath[info] = true
	defer delete(onPath, info)

	nested := len(onPath) > 1

	_, fields := c.resolve(info)
	for _, f := range fields {
		if f.Err != nil {
			continue
		}

		fieldPath := path.Field(f.Name)

		switch {
		case f.Role == descriptor.RoleAttribute:
			if first, dup := seen[f.XMLName]; dup {
				d := fieldDiagnostic(path.String(), f.FieldInfo, descriptor.ErrDuplicateAttr)
				d.Message = fmt.Sprintf("attribute %q already bound by %s", f.XMLName, first)
				res.Add(d)

				continue
			}

			seen[f.XMLName] = fieldPath.String()

		case f.Role == descriptor.RoleText && nested:
			res.Add(fieldDiagnostic(path.String(), f.FieldInfo, descriptor.ErrFlattenedText))

		case f.Role == descriptor.RoleFlatten && f.Shape.Payload == descriptor.PayloadComposite:
			inner := structInfo(graph, f.Payload)
			if inner == nil {
				continue
			}

			if onPath[inner] {
				res.Add(fieldDiagnostic(path.String(), f.FieldInfo, descriptor.ErrFlattenCycle))
				continue
			}

			c.checkSplices(res, graph, inner, fieldPath, seen, onPath)
		}
	}
}

// structInfo returns the analyzed struct behind a named type, or nil for
// types outside the loaded packages.
func structInfo(graph *TypeGraph, t types.Type) *TypeInfo {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil
	}

	info := graph.GetType(TypeID{PkgPath: named.Obj().Pkg().Path(), Name: named.Obj().Name()})
	if info == nil || info.Kind != TypeKindStruct {
		return nil
	}

	return info
}

// checkBinding validates the binding file and matches its entries against
// the loaded types.
func (c *Checker) checkBinding(res *diagnostic.Diagnostics, graph *TypeGraph) {
	res.Merge(*binding.Validate(c.binding))

	for _, key := range c.binding.TypeKeys() {
		info := graph.Lookup(key)
		if info == nil {
			res.AddWarning("type_not_loaded",
				fmt.Sprintf("type %s is not part of the checked packages", key), key, "")

			continue
		}

		if info.ID.String() != key {
			res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        "short_type_key",
				Message:     fmt.Sprintf("type key %q must be the full package path", key),
				Type:        key,
				Suggestions: []string{info.ID.String()},
			})

			continue
		}

		tb := c.binding.Types[key]
		for _, field := range slices.Sorted(maps.Keys(tb.Fields)) {
			if f := info.Field(field); f != nil && f.Exported {
				continue
			}

			res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        "unknown_field",
				Message:     fmt.Sprintf("type has no exported field %q", field),
				Type:        info.ID.Short(),
				Field:       field,
				Suggestions: match.Suggest(field, info.FieldNames(), 1),
			})
		}

		if len(tb.Variants) > 0 && info.Kind != TypeKindInterface && !hasMethod(info.GoType, "UnionTag") {
			res.AddError("not_union", "variants given for a type that is not a union", info.ID.Short(), "")
		}
	}
}

// fieldDiagnostic converts a descriptor error on field f into a diagnostic.
func fieldDiagnostic(typ string, f *FieldInfo, err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     codeOf(err),
		Message:  err.Error(),
		Type:     typ,
		Field:    f.Name,
	}

	if f.Pos.IsValid() {
		d.Pos = f.Pos.String()
	}

	var oe *descriptor.OptionError
	if errors.As(err, &oe) && errors.Is(err, descriptor.ErrUnknownOption) {
		d.Suggestions = match.Suggest(oe.Option, descriptor.Options, 1)
	}

	return d
}

var codes = []struct {
	err  error
	code string
}{
	{descriptor.ErrUnknownOption, "unknown_option"},
	{descriptor.ErrUnexpectedValue, "unexpected_value"},
	{descriptor.ErrEmptyName, "empty_name"},
	{descriptor.ErrMisplacedRoot, "misplaced_root"},
	{descriptor.ErrConflictingRoles, "conflicting_roles"},
	{descriptor.ErrNotTextual, "not_textual"},
	{descriptor.ErrFlattenPayload, "flatten_payload"},
	{descriptor.ErrFlattenRename, "flatten_rename"},
	{descriptor.ErrMultipleText, "multiple_text"},
	{descriptor.ErrDuplicateAttr, "duplicate_attribute"},
	{descriptor.ErrFlattenedText, "flattened_text"},
	{descriptor.ErrFlattenCycle, "flatten_cycle"},
	{descriptor.ErrUnsupportedType, "unsupported_type"},
	{descriptor.ErrUnregisteredUnion, "not_a_union"},
}

func codeOf(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return "invalid_field"
}
