// Package sink defines the event contract the serializer emits to and
// provides Writer, the escaping byte emitter behind it.
//
// A document is an ordered stream of events:
//
//	StartElement(name)
//	Attribute(name, value)   // only directly after StartElement or another Attribute
//	Characters(text)
//	EndElement() / EndEmptyElement()
//
// The sink owns escaping; callers always pass raw text.
package sink

import "errors"

// Declaration is written verbatim at the start of every document.
const Declaration = `<?xml version="1.0" encoding="utf-8"?>`

var (
	ErrAttributeOutsideStartTag = errors.New("sink: attribute emitted outside of a start tag")
	ErrNoOpenElement            = errors.New("sink: end element without a matching start element")
	ErrEmptyName                = errors.New("sink: empty element or attribute name")
)

// Sink accepts markup events in document order.
type Sink interface {
	StartElement(name string) error
	Attribute(name, value string) error
	Characters(text string) error
	// EndElement closes the innermost open element with an explicit end tag.
	EndElement() error
	// EndEmptyElement closes the innermost open element in self-closing
	// form. If content was already written it falls back to an end tag.
	EndEmptyElement() error
}

// Marshaler is implemented by types that emit their own markup, replacing
// the descriptor-driven rendering of their values entirely. The emitted
// events must form well-formed elements; nothing validates them.
type Marshaler interface {
	MarshalXMLBind(s Sink) error
}
