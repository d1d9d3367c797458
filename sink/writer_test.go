package sink

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Document(t *testing.T) {
	var b strings.Builder
	w := NewWriter(&b)

	require.NoError(t, w.Declaration())
	require.NoError(t, w.StartElement("base"))
	require.NoError(t, w.Attribute("item", "something"))
	require.NoError(t, w.StartElement("sub"))
	require.NoError(t, w.Attribute("subitem", "sub-something"))
	require.NoError(t, w.EndEmptyElement())
	require.NoError(t, w.StartElement("text"))
	require.NoError(t, w.Characters("content"))
	require.NoError(t, w.EndElement())
	require.NoError(t, w.EndElement())

	assert.Equal(t,
		`<?xml version="1.0" encoding="utf-8"?><base item="something"><sub subitem="sub-something" /><text>content</text></base>`,
		b.String())
	assert.Zero(t, w.Depth())
}

func TestWriter_Escaping(t *testing.T) {
	var b strings.Builder
	w := NewWriter(&b)

	require.NoError(t, w.StartElement("e"))
	require.NoError(t, w.Attribute("a", `<"Tom" & 'Jerry'>`))
	require.NoError(t, w.Characters(`a < b && c > "d" 'e'`))
	require.NoError(t, w.EndElement())

	assert.Equal(t,
		`<e a="&lt;&quot;Tom&quot; &amp; &apos;Jerry&apos;&gt;">a &lt; b &amp;&amp; c &gt; "d" 'e'</e>`,
		b.String())
}

func TestWriter_EndElementWithoutContent(t *testing.T) {
	var b strings.Builder
	w := NewWriter(&b)

	require.NoError(t, w.StartElement("e"))
	require.NoError(t, w.EndElement())

	assert.Equal(t, "<e></e>", b.String())
}

func TestWriter_EndEmptyElementAfterContent(t *testing.T) {
	var b strings.Builder
	w := NewWriter(&b)

	require.NoError(t, w.StartElement("e"))
	require.NoError(t, w.Characters("x"))
	require.NoError(t, w.EndEmptyElement())

	assert.Equal(t, "<e>x</e>", b.String())
}

func TestWriter_ContractViolations(t *testing.T) {
	var b strings.Builder
	w := NewWriter(&b)

	assert.ErrorIs(t, w.Attribute("a", "b"), ErrAttributeOutsideStartTag)
	assert.ErrorIs(t, w.EndElement(), ErrNoOpenElement)
	assert.ErrorIs(t, w.EndEmptyElement(), ErrNoOpenElement)
	assert.ErrorIs(t, w.StartElement(""), ErrEmptyName)

	require.NoError(t, w.StartElement("e"))
	require.NoError(t, w.Characters("x"))
	assert.ErrorIs(t, w.Attribute("late", "v"), ErrAttributeOutsideStartTag)
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriter_PropagatesWriteError(t *testing.T) {
	ioErr := errors.New("disk full")
	w := NewWriter(failingWriter{err: ioErr})

	err := w.StartElement("e")
	assert.Same(t, ioErr, err)
}
