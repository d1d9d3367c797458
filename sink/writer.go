package sink

import (
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)

	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
)

// Writer is a Sink producing compact XML on an io.Writer.
// Errors from the underlying writer are returned unchanged. A Writer is
// not safe for concurrent use.
type Writer struct {
	w     io.Writer
	stack []string
	// open is set while the start tag of the innermost element is still
	// unterminated and can receive attributes.
	open bool
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Declaration writes the fixed XML declaration.
func (x *Writer) Declaration() error {
	return x.write(Declaration)
}

// Depth returns the number of currently open elements.
func (x *Writer) Depth() int {
	return len(x.stack)
}

func (x *Writer) StartElement(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	if err := x.terminateStartTag(); err != nil {
		return err
	}

	x.stack = append(x.stack, name)
	x.open = true

	return x.write("<" + name)
}

func (x *Writer) Attribute(name, value string) error {
	if !x.open {
		return ErrAttributeOutsideStartTag
	}

	if name == "" {
		return ErrEmptyName
	}

	return x.write(" " + name + `="` + attrEscaper.Replace(value) + `"`)
}

func (x *Writer) Characters(text string) error {
	if err := x.terminateStartTag(); err != nil {
		return err
	}

	if text == "" {
		return nil
	}

	return x.write(textEscaper.Replace(text))
}

func (x *Writer) EndElement() error {
	name, err := x.pop()
	if err != nil {
		return err
	}

	if x.open {
		x.open = false
		return x.write("></" + name + ">")
	}

	return x.write("</" + name + ">")
}

func (x *Writer) EndEmptyElement() error {
	name, err := x.pop()
	if err != nil {
		return err
	}

	if x.open {
		x.open = false
		return x.write(" />")
	}

	return x.write("</" + name + ">")
}

func (x *Writer) pop() (string, error) {
	if len(x.stack) == 0 {
		return "", ErrNoOpenElement
	}

	name := x.stack[len(x.stack)-1]
	x.stack = x.stack[:len(x.stack)-1]

	return name, nil
}

func (x *Writer) terminateStartTag() error {
	if !x.open {
		return nil
	}

	x.open = false

	return x.write(">")
}

func (x *Writer) write(s string) error {
	_, err := io.WriteString(x.w, s)
	return err
}
