package analyze

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"xmlbind/descriptor"
	"xmlbind/internal/diagnostic"
)

// Layout is the static rendering plan of one struct type: what the
// registry would build at run time, as far as it is known statically.
type Layout struct {
	Type    TypeID
	Element string
	Fields  []FieldLayout
}

// FieldLayout describes one field of a Layout.
type FieldLayout struct {
	Path         string // Go field path, through flattened structs
	Name         string // XML name; empty for flattened fields
	Role         descriptor.Role
	Multiplicity descriptor.Multiplicity
	Payload      descriptor.PayloadKind
	GoType       string
}

// Layout builds the static layout of info. Fields of flattened structs
// follow the flattened field. Annotation errors are returned as one error.
func (c *Checker) Layout(graph *TypeGraph, info *TypeInfo) (*Layout, error) {
	if info.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is not a struct (kind: %s)", info.ID, info.Kind)
	}

	res := &diagnostic.Diagnostics{}
	c.checkType(res, graph, info)

	if err := res.Error(); err != nil {
		return nil, err
	}

	element, _ := c.resolve(info)
	l := &Layout{Type: info.ID, Element: element}

	c.appendFields(l, graph, info, NewTypePath(info.ID.Name), map[*TypeInfo]bool{})

	return l, nil
}

func (c *Checker) appendFields(l *Layout, graph *TypeGraph, info *TypeInfo, path *TypePath, visited map[*TypeInfo]bool) {
	if visited[info] {
		return
	}

	visited[info] = true
	defer delete(visited, info)

	stringer := NewTypeStringer()

	_, fields := c.resolve(info)
	for _, f := range fields {
		if f.Err != nil {
			continue
		}

		fieldPath := path.Field(f.Name)

		fl := FieldLayout{
			Path:         fieldPath.Tail(),
			Name:         f.XMLName,
			Role:         f.Role,
			Multiplicity: f.Shape.Multiplicity,
			Payload:      f.Shape.Payload,
			GoType:       stringer.TypeString(f.Type),
		}

		if f.Role == descriptor.RoleFlatten {
			fl.Name = ""
		}

		l.Fields = append(l.Fields, fl)

		if f.Role == descriptor.RoleFlatten && f.Shape.Payload == descriptor.PayloadComposite {
			if nested := structInfo(graph, f.Payload); nested != nil {
				c.appendFields(l, graph, nested, fieldPath, visited)
			}
		}
	}
}

// Write renders the layout as an aligned table.
func (l *Layout) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s -> <%s>\n", l.Type, l.Element)
	fmt.Fprintln(tw, "FIELD\tXML NAME\tROLE\tMULTIPLICITY\tPAYLOAD\tGO TYPE")

	for _, f := range l.Fields {
		name := f.Name
		if name == "" {
			name = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Path, name, f.Role, f.Multiplicity, f.Payload, f.GoType)
	}

	return tw.Flush()
}

// String returns the rendered table.
func (l *Layout) String() string {
	var b strings.Builder
	_ = l.Write(&b)

	return b.String()
}
