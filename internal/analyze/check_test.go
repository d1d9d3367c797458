package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmlbind/binding"
	"xmlbind/descriptor"
	"xmlbind/internal/diagnostic"
)

func findDiag(list []diagnostic.Diagnostic, location string) *diagnostic.Diagnostic {
	for i := range list {
		if list[i].Location() == location {
			return &list[i]
		}
	}

	return nil
}

func TestChecker_Invalid(t *testing.T) {
	graph := loadGraph(t, invalidPkg)
	res := NewChecker("", nil, nil).Check(graph)

	require.True(t, res.HasErrors())

	tests := []struct {
		location string
		code     string
	}{
		{"invalid.TwoTexts.Second", "multiple_text"},
		{"invalid.AttributeStruct.Sub", "not_textual"},
		{"invalid.FlattenPrimitive.Name", "flatten_payload"},
		{"invalid.Typo.Name", "unknown_option"},
		{"invalid.FlattenSequence.Subs", "flatten_payload"},
		{"invalid.FlattenedText.In.Body", "flattened_text"},
		{"invalid.SelfFlatten.Flat", "flatten_cycle"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			d := findDiag(res.Errors, tt.location)
			require.NotNil(t, d, "no diagnostic for %s in %v", tt.location, res.Errors)
			assert.Equal(t, tt.code, d.Code)
			assert.Contains(t, d.Pos, "invalid.go:")
		})
	}

	assert.Len(t, res.Errors, len(tests))
	assert.Nil(t, findDiag(res.Errors, "invalid.TwoTexts.First"))
	assert.Nil(t, findDiag(res.Errors, "invalid.Valid.Name"))
	assert.Nil(t, findDiag(res.Errors, "invalid.TextBody.Body"))
	assert.Nil(t, findDiag(res.Errors, "invalid.FlattenedText.Own"))
}

func TestChecker_TypoSuggestion(t *testing.T) {
	graph := loadGraph(t, invalidPkg)
	res := NewChecker("", nil, nil).Check(graph)

	d := findDiag(res.Errors, "invalid.Typo.Name")
	require.NotNil(t, d)
	assert.Equal(t, []string{"attribute"}, d.Suggestions)
	assert.Contains(t, d.String(), "(did you mean attribute?)")
}

func TestChecker_Calendar(t *testing.T) {
	graph := loadGraph(t, calendarPkg)
	res := NewChecker("", nil, nil).Check(graph)

	assert.True(t, res.IsValid(), "unexpected errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestChecker_OtherTagKey(t *testing.T) {
	graph := loadGraph(t, invalidPkg)
	res := NewChecker("xml2", nil, nil).Check(graph)

	assert.True(t, res.IsValid())
}

func TestChecker_BindingReplacesTags(t *testing.T) {
	graph := loadGraph(t, invalidPkg)

	b := &binding.File{
		Version: binding.CurrentVersion,
		Types: map[string]binding.TypeBinding{
			invalidPkg + ".Typo": {
				Fields: map[string]string{"Name": "attribute"},
			},
			invalidPkg + ".TwoTexts": {
				Fields: map[string]string{"Second": "rename=second"},
			},
		},
	}

	res := NewChecker("", b, nil).Check(graph)

	assert.Nil(t, findDiag(res.Errors, "invalid.Typo.Name"))
	assert.Nil(t, findDiag(res.Errors, "invalid.TwoTexts.Second"))
	assert.NotNil(t, findDiag(res.Errors, "invalid.FlattenPrimitive.Name"))
}

func TestChecker_BindingEntries(t *testing.T) {
	graph := loadGraph(t, calendarPkg)

	b := &binding.File{
		Version: binding.CurrentVersion,
		Types: map[string]binding.TypeBinding{
			calendarPkg + ".Extra": {
				Fields:   map[string]string{"Weeks": "attribute"},
				Variants: map[string]string{"Week": "week"},
			},
			"calendar.Date": {
				Root: "date",
			},
			calendarPkg + ".Missing": {
				Root: "missing",
			},
		},
	}

	res := NewChecker("", b, nil).Check(graph)

	unknown := findDiag(res.Errors, "calendar.Extra.Weeks")
	require.NotNil(t, unknown, "%v", res.Errors)
	assert.Equal(t, "unknown_field", unknown.Code)
	assert.Equal(t, []string{"Week"}, unknown.Suggestions)

	short := findDiag(res.Errors, "calendar.Date")
	require.NotNil(t, short)
	assert.Equal(t, "short_type_key", short.Code)
	assert.Equal(t, []string{calendarPkg + ".Date"}, short.Suggestions)

	notUnion := findDiag(res.Errors, "calendar.Extra")
	require.NotNil(t, notUnion)
	assert.Equal(t, "not_union", notUnion.Code)

	missing := findDiag(res.Warnings, calendarPkg+".Missing")
	require.NotNil(t, missing)
	assert.Equal(t, "type_not_loaded", missing.Code)
}

func TestChecker_BindingValidation(t *testing.T) {
	graph := loadGraph(t, calendarPkg)

	b := &binding.File{
		Version: "7",
		Types: map[string]binding.TypeBinding{
			calendarPkg + ".Extra": {
				Fields: map[string]string{"Week": "flaten"},
			},
		},
	}

	res := NewChecker("", b, nil).Check(graph)

	codes := map[string]bool{}
	for _, d := range res.Errors {
		codes[d.Code] = true
	}

	assert.True(t, codes["unsupported_version"])
	assert.True(t, codes["unknown_option"])
	// the broken entry is also reported where it is applied
	assert.NotNil(t, findDiag(res.Errors, "calendar.Extra.Week"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "unknown_option", codeOf(&descriptor.OptionError{Option: "x", Err: descriptor.ErrUnknownOption}))
	assert.Equal(t, "not_a_union", codeOf(descriptor.ErrUnregisteredUnion))
	assert.Equal(t, "invalid_field", codeOf(assert.AnError))
}

func TestChecker_Layout(t *testing.T) {
	graph := loadGraph(t, calendarPkg)
	checker := NewChecker("", nil, nil)

	entry := graph.GetType(TypeID{PkgPath: calendarPkg, Name: "Entry"})
	require.NotNil(t, entry)

	l, err := checker.Layout(graph, entry)
	require.NoError(t, err)
	assert.Equal(t, "Date", l.Element)
	require.Len(t, l.Fields, 3)

	day := l.Fields[2]
	assert.Equal(t, "Day", day.Path)
	assert.Equal(t, "Day", day.Name)
	assert.Equal(t, descriptor.RoleElement, day.Role)
	assert.Equal(t, descriptor.PayloadCustom, day.Payload)

	out := l.String()
	assert.Contains(t, out, calendarPkg+".Entry -> <Date>")
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "custom")
}

func TestChecker_LayoutFlattened(t *testing.T) {
	graph := loadGraph(t, calendarPkg)
	checker := NewChecker("", nil, nil)

	dt := graph.GetType(TypeID{PkgPath: calendarPkg, Name: "DateTime"})
	require.NotNil(t, dt)

	l, err := checker.Layout(graph, dt)
	require.NoError(t, err)
	assert.Equal(t, "DateTime", l.Element)

	var paths []string
	for _, f := range l.Fields {
		paths = append(paths, f.Path)
	}

	assert.Equal(t, []string{
		"Date",
		"Date.Year",
		"Date.Month",
		"Date.Day",
		"Date.Extra",
		"Date.Extra.Week",
		"Date.Extra.Century",
		"Date.OptionalExtra",
		"Date.OptionalExtra.LunarDay",
		"Time",
		"Kind",
	}, paths)

	assert.Empty(t, l.Fields[0].Name)
	assert.Equal(t, "week", l.Fields[5].Name)
	assert.Equal(t, descriptor.Optional, l.Fields[7].Multiplicity)
	assert.Equal(t, descriptor.PayloadEnum, l.Fields[10].Payload)
}

func TestChecker_LayoutErrors(t *testing.T) {
	graph := loadGraph(t, invalidPkg)
	checker := NewChecker("", nil, nil)

	typo := graph.GetType(TypeID{PkgPath: invalidPkg, Name: "Typo"})
	require.NotNil(t, typo)

	_, err := checker.Layout(graph, typo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_option")

	self := graph.GetType(TypeID{PkgPath: invalidPkg, Name: "SelfFlatten"})
	require.NotNil(t, self)

	_, err = checker.Layout(graph, self)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flatten_cycle")

	sub := graph.GetType(TypeID{PkgPath: invalidPkg, Name: "Sub"})
	require.NotNil(t, sub)

	l, err := checker.Layout(graph, sub)
	require.NoError(t, err)
	assert.Equal(t, "Sub", l.Element)
	require.Len(t, l.Fields, 1)
	assert.Equal(t, "Field", l.Fields[0].Name)
}
