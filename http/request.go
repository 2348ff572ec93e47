package http

import (
	"github.com/indigo-web/minihttp/http/method"
	"github.com/indigo-web/minihttp/http/proto"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

// RequestLine is the first line of a request. MethodToken always holds the method as it
// was received, which is the only way to tell extension methods apart.
type RequestLine struct {
	Method      method.Method
	MethodToken []byte
	URI         []byte
	Version     proto.Version
}

// Request is a parsed request message. It is never modified after being parsed.
//
// Body is nil unless the request carried a valid Content-Length, in which case it is
// non-nil even for zero-length bodies.
type Request struct {
	Line    RequestLine
	Headers Headers
	Body    []byte
}

// Method returns the request method.
func (r *Request) Method() method.Method {
	return r.Line.Method
}

// FindHeader returns the most recently appended header whose name matches exactly.
func (r *Request) FindHeader(name string) (MessageHeader, bool) {
	return r.Headers.Find(name)
}

// FirstValueContent returns the first value token of the header found by FindHeader.
// Nil is returned if there's no such header, or it has no value.
func (r *Request) FirstValueContent(name string) FieldContent {
	header, found := r.FindHeader(name)
	if !found || !header.HasValue() {
		return nil
	}

	return header.Value[0]
}

// ContentLength returns the declared body length. The header is valid only when it
// consists of a single token of decimal digits.
func (r *Request) ContentLength() (length int, ok bool) {
	header, found := r.FindHeader("Content-Length")
	if !found || len(header.Value) != 1 {
		return 0, false
	}

	return ParseLength(header.Value[0])
}

// KeepAlive tells whether the connection may serve further requests after this one.
// HTTP/1.1 and newer are persistent unless asked to close, older ones vice versa.
func (r *Request) KeepAlive() bool {
	connection := uf.B2S(r.FirstValueContent("Connection"))

	if r.Line.Version.AtLeast(1, 1) {
		return !strcomp.EqualFold(connection, "close")
	}

	return strcomp.EqualFold(connection, "keep-alive")
}

// ParseLength parses a non-negative decimal integer. Overflowing values are rejected.
func ParseLength(digits []byte) (length int, ok bool) {
	if len(digits) == 0 {
		return 0, false
	}

	const maxLength = int(^uint(0) >> 1)

	for _, char := range digits {
		if char < '0' || char > '9' {
			return 0, false
		}

		digit := int(char - '0')
		if length > (maxLength-digit)/10 {
			return 0, false
		}

		length = length*10 + digit
	}

	return length, true
}
