package http1

import (
	"io"

	"github.com/indigo-web/minihttp/http"
	"github.com/indigo-web/minihttp/http/status"
)

// Serializer renders responses into a reusable buffer and flushes each of them with a
// single write.
type Serializer struct {
	buff []byte
}

func NewSerializer(buff []byte) *Serializer {
	return &Serializer{
		buff: buff[:0],
	}
}

// Write renders the response and writes it at once.
func (s *Serializer) Write(response *http.Response, w io.Writer) error {
	s.buff = AppendResponse(s.buff[:0], response)
	_, err := w.Write(s.buff)

	return err
}

// AppendResponse appends the exact wire form of the response. No CRLF follows the body.
func AppendResponse(buff []byte, response *http.Response) []byte {
	buff = response.Version.AppendTo(buff)
	buff = append(buff, ' ')
	buff = append(buff, status.StringCode(response.Code)...)
	buff = append(buff, ' ')
	buff = append(buff, status.Text(response.Code)...)
	buff = crlf(buff)

	for _, header := range response.Headers {
		buff = crlf(AppendHeader(buff, header))
	}

	buff = crlf(buff)

	return append(buff, response.Body...)
}

// AppendHeader appends the header without the trailing CRLF. Value tokens are joined by
// a single space, a header with no value is rendered as the name and a bare colon.
func AppendHeader(buff []byte, header http.MessageHeader) []byte {
	buff = append(buff, header.Name...)
	buff = append(buff, ':')

	for _, content := range header.Value {
		buff = append(buff, ' ')
		buff = append(buff, content...)
	}

	return buff
}

// AppendRequestLine appends the normalized form of the request line: single spaces
// between the fields and a trailing CRLF.
func AppendRequestLine(buff []byte, line http.RequestLine) []byte {
	buff = append(buff, line.MethodToken...)
	buff = append(buff, ' ')
	buff = append(buff, line.URI...)
	buff = append(buff, ' ')
	buff = line.Version.AppendTo(buff)

	return crlf(buff)
}

const crlfSeq = "\r\n"

func crlf(buff []byte) []byte {
	return append(buff, crlfSeq...)
}
