package http

import (
	"bytes"
	"strconv"

	"github.com/indigo-web/minihttp/http/proto"
	"github.com/indigo-web/minihttp/http/status"
)

// why 4? The server never emits more than Content-Type, Content-Length and
// Content-Encoding, one seat is left spare.
const preallocRespHeaders = 4

// Response is built by the server out of route outcomes. Unlike request headers,
// response headers never repeat: setting an existing one overrides it in place.
type Response struct {
	Version proto.Version
	Code    status.Code
	Headers Headers
	Body    []byte
}

// NewResponse returns a response to the request of the given version. The code defaults
// to 404 Not Found, so anything nobody claimed responsibility for is reported as such.
func NewResponse(version proto.Version) *Response {
	return &Response{
		Version: version,
		Code:    status.NotFound,
		Headers: make(Headers, 0, preallocRespHeaders),
	}
}

// Reset prepares the response for reuse, keeping the allocated headers storage.
func (r *Response) Reset(version proto.Version) *Response {
	r.Version = version
	r.Code = status.NotFound
	r.Headers = r.Headers[:0]
	r.Body = nil

	return r
}

// WithCode sets the response code.
func (r *Response) WithCode(code status.Code) *Response {
	r.Code = code
	return r
}

// Header sets the header to the value tokens. If a header with exactly the same name is
// already present, its value is replaced and its position is preserved.
func (r *Response) Header(name string, contents ...string) *Response {
	return r.SetHeader(NewHeader(name, contents...))
}

// SetHeader is the same as Header, but takes a ready header.
func (r *Response) SetHeader(header MessageHeader) *Response {
	for i := range r.Headers {
		if bytes.Equal(r.Headers[i].Name, header.Name) {
			r.Headers[i].Value = header.Value
			return r
		}
	}

	r.Headers = append(r.Headers, header)

	return r
}

// ContentLength sets the Content-Length header to the value.
func (r *Response) ContentLength(length int) *Response {
	return r.Header("Content-Length", strconv.Itoa(length))
}

// Append appends the data to the body. Appending nothing doesn't make the body present.
func (r *Response) Append(data []byte) *Response {
	if len(data) > 0 {
		r.Body = append(r.Body, data...)
	}

	return r
}

// HasBody reports whether the response carries a body.
func (r *Response) HasBody() bool {
	return r.Body != nil
}

// FindHeader returns the header named exactly as name.
func (r *Response) FindHeader(name string) (MessageHeader, bool) {
	return r.Headers.Find(name)
}
