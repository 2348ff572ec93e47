package http

import (
	"bytes"
	"iter"

	"github.com/indigo-web/utils/uf"
)

// FieldContent is a single whitespace-delimited token of a header value.
type FieldContent []byte

// FieldValue is an ordered sequence of header value tokens. A nil FieldValue means
// the header carries no value at all.
type FieldValue []FieldContent

// Join glues the tokens back together, separating them by sep.
func (f FieldValue) Join(sep byte) []byte {
	switch len(f) {
	case 0:
		return nil
	case 1:
		return f[0]
	}

	var size int
	for _, content := range f {
		size += len(content) + 1
	}

	joined := make([]byte, 0, size-1)
	for i, content := range f {
		if i > 0 {
			joined = append(joined, sep)
		}

		joined = append(joined, content...)
	}

	return joined
}

// MessageHeader is a single header field. Names are compared byte-wise, no case
// normalization is ever applied.
type MessageHeader struct {
	Name  []byte
	Value FieldValue
}

// NewHeader constructs a header from its name and value tokens. No tokens result in a
// header without a value.
func NewHeader(name string, contents ...string) MessageHeader {
	header := MessageHeader{Name: []byte(name)}
	if len(contents) == 0 {
		return header
	}

	header.Value = make(FieldValue, len(contents))
	for i, content := range contents {
		header.Value[i] = FieldContent(content)
	}

	return header
}

// HasValue reports whether the header has at least one value token.
func (m MessageHeader) HasValue() bool {
	return len(m.Value) > 0
}

// Is reports whether the header is named exactly as name.
func (m MessageHeader) Is(name string) bool {
	return uf.B2S(m.Name) == name
}

// Headers is an ordered list of header fields.
type Headers []MessageHeader

// Find returns the most recently appended header named exactly as name.
func (h Headers) Find(name string) (MessageHeader, bool) {
	for _, header := range h.Backward() {
		if header.Is(name) {
			return header, true
		}
	}

	return MessageHeader{}, false
}

// Backward iterates over the headers starting from the most recently appended one.
func (h Headers) Backward() iter.Seq2[int, MessageHeader] {
	return func(yield func(int, MessageHeader) bool) {
		for i := len(h) - 1; i >= 0; i-- {
			if !yield(i, h[i]) {
				return
			}
		}
	}
}

// Equal compares two header lists entry by entry.
func (h Headers) Equal(other Headers) bool {
	if len(h) != len(other) {
		return false
	}

	for i := range h {
		if !bytes.Equal(h[i].Name, other[i].Name) || !equalValues(h[i].Value, other[i].Value) {
			return false
		}
	}

	return true
}

func equalValues(a, b FieldValue) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}
