package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	calendarPkg = "xmlbind/examples/calendar"
	invalidPkg  = "xmlbind/examples/invalid"
)

func loadGraph(t *testing.T, patterns ...string) *TypeGraph {
	t.Helper()

	graph, err := NewAnalyzer(nil).LoadPackages(context.Background(), patterns...)
	require.NoError(t, err)
	require.NotNil(t, graph)

	return graph
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	graph := loadGraph(t, calendarPkg, invalidPkg)

	assert.Contains(t, graph.Packages, calendarPkg)
	assert.Contains(t, graph.Packages, invalidPkg)

	assert.Contains(t, graph.Types, TypeID{PkgPath: calendarPkg, Name: "DateTime"})
	assert.Contains(t, graph.Types, TypeID{PkgPath: invalidPkg, Name: "Typo"})
}

func TestAnalyzer_DateFields(t *testing.T) {
	graph := loadGraph(t, calendarPkg)

	date := graph.GetType(TypeID{PkgPath: calendarPkg, Name: "Date"})
	require.NotNil(t, date)
	assert.Equal(t, TypeKindStruct, date.Kind)
	assert.Equal(t, []string{"Year", "Month", "Day", "Extra", "OptionalExtra"}, date.FieldNames())

	year := date.Field("Year")
	require.NotNil(t, year)
	assert.Equal(t, TypeKindBasic, year.Type.Kind)
	assert.Equal(t, "rename=year", year.GetTag("xmlbind"))
	assert.True(t, year.HasTag("xmlbind"))
	assert.False(t, year.HasTag("json"))
	assert.True(t, year.Pos.IsValid())

	optional := date.Field("OptionalExtra")
	require.NotNil(t, optional)
	assert.Equal(t, TypeKindPointer, optional.Type.Kind)
	require.NotNil(t, optional.Type.ElemType)
	assert.Equal(t, TypeKindStruct, optional.Type.ElemType.Kind)
}

func TestAnalyzer_RootMarkerKept(t *testing.T) {
	graph := loadGraph(t, calendarPkg)

	entry := graph.GetType(TypeID{PkgPath: calendarPkg, Name: "Entry"})
	require.NotNil(t, entry)

	marker := entry.Field("_")
	require.NotNil(t, marker)
	assert.False(t, marker.Exported)
	assert.True(t, isRootMarker(marker.Type.GoType))
	assert.Equal(t, "root=Date", marker.GetTag("xmlbind"))

	assert.Equal(t, []string{"Year", "Month", "Day"}, entry.FieldNames())
}

func TestAnalyzer_Kinds(t *testing.T) {
	graph := loadGraph(t, calendarPkg)

	kind := graph.GetType(TypeID{PkgPath: calendarPkg, Name: "DateKind"})
	require.NotNil(t, kind)
	assert.Equal(t, TypeKindInterface, kind.Kind)

	holidays := graph.GetType(TypeID{PkgPath: calendarPkg, Name: "Holidays"})
	require.NotNil(t, holidays)
	assert.Equal(t, TypeKindAlias, holidays.Kind)
	require.NotNil(t, holidays.Underlying)
	assert.Equal(t, TypeKindSlice, holidays.Underlying.Kind)
}

func TestAnalyzer_GetStruct(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	_, err := analyzer.LoadPackages(context.Background(), calendarPkg)
	require.NoError(t, err)

	info, err := analyzer.GetStruct(calendarPkg, "Extra")
	require.NoError(t, err)
	assert.Equal(t, "Extra", info.ID.Name)

	_, err = analyzer.GetStruct(calendarPkg, "Holidays")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a struct")

	_, err = analyzer.GetStruct(calendarPkg, "Missing")
	require.Error(t, err)
}

func TestTypeGraph_Lookup(t *testing.T) {
	graph := loadGraph(t, calendarPkg)

	info := graph.Lookup(calendarPkg + ".Date")
	require.NotNil(t, info)
	assert.Equal(t, "Date", info.ID.Name)

	short := graph.Lookup("calendar.Date")
	assert.Same(t, info, short)

	assert.Nil(t, graph.Lookup("calendar.Missing"))
	assert.Nil(t, graph.Lookup("Date"))
}

func TestTypeID_String(t *testing.T) {
	id := TypeID{PkgPath: calendarPkg, Name: "Date"}
	assert.Equal(t, "xmlbind/examples/calendar.Date", id.String())
	assert.Equal(t, "calendar.Date", id.Short())

	idNoPkg := TypeID{Name: "int"}
	assert.Equal(t, "int", idNoPkg.String())
	assert.Equal(t, "int", idNoPkg.Short())
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "basic", TypeKindBasic.String())
	assert.Equal(t, "struct", TypeKindStruct.String())
	assert.Equal(t, "pointer", TypeKindPointer.String())
	assert.Equal(t, "slice", TypeKindSlice.String())
	assert.Equal(t, "alias", TypeKindAlias.String())
	assert.Equal(t, "external", TypeKindExternal.String())
	assert.Equal(t, "interface", TypeKindInterface.String())
	assert.Equal(t, "map", TypeKindMap.String())
	assert.Equal(t, "unknown", TypeKindUnknown.String())
}
