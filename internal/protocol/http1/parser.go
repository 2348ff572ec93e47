package http1

import (
	"bytes"
	"strconv"

	"github.com/indigo-web/minihttp/http"
	"github.com/indigo-web/minihttp/http/method"
	"github.com/indigo-web/minihttp/http/proto"
	"github.com/indigo-web/minihttp/internal/grammar"
	"github.com/indigo-web/utils/uf"
)

// Head is everything preceding the body: the request line and the header section.
type Head struct {
	Line    http.RequestLine
	Headers http.Headers
}

// Request returns a request made of the head and the body.
func (h Head) Request(body []byte) *http.Request {
	return &http.Request{
		Line:    h.Line,
		Headers: h.Headers,
		Body:    body,
	}
}

// ParseMethod consumes the longest alphabetic run. Known methods are matched
// case-insensitively, the raw token is returned anyway.
func ParseMethod(in grammar.Input) (m method.Method, token []byte, rest grammar.Input, err error) {
	token, rest, err = grammar.TakeWhile("method", 1, in, grammar.IsAlpha)
	if err != nil {
		return m, nil, in, err
	}

	return method.Parse(uf.B2S(token)), bytes.Clone(token), rest, nil
}

// ParseRequestURI consumes everything up to the next whitespace character.
func ParseRequestURI(in grammar.Input) ([]byte, grammar.Input, error) {
	uri, rest, err := grammar.TakeWhile("request-uri", 1, in, grammar.NotWhitespace)
	if err != nil {
		return nil, in, err
	}

	return bytes.Clone(uri), rest, nil
}

// ParseVersion consumes "HTTP/" DIGIT+ "." DIGIT+.
func ParseVersion(in grammar.Input) (version proto.Version, rest grammar.Input, err error) {
	rest, err = grammar.Tag("http-version", "HTTP/", in)
	if err != nil {
		return version, in, err
	}

	if version.Major, rest, err = parseVersionNumber(rest); err != nil {
		return version, in, err
	}

	if rest, err = grammar.Tag("http-version", ".", rest); err != nil {
		return version, in, err
	}

	if version.Minor, rest, err = parseVersionNumber(rest); err != nil {
		return version, in, err
	}

	return version, rest, nil
}

func parseVersionNumber(in grammar.Input) (uint, grammar.Input, error) {
	digits, rest, err := grammar.TakeWhile("http-version", 1, in, grammar.IsDigit)
	if err != nil {
		return 0, in, err
	}

	number, err := strconv.ParseUint(uf.B2S(digits), 10, 0)
	if err != nil {
		return 0, in, grammar.Malformed("http-version", in)
	}

	return uint(number), rest, nil
}

// ParseRequestLine consumes the request line including its CRLF. Leading whitespace
// (e.g. stray CRLFs between pipelined requests) is skipped, the fields are separated
// by any amount of whitespace, and only whitespace may precede the final CRLF.
func ParseRequestLine(in grammar.Input) (line http.RequestLine, rest grammar.Input, err error) {
	rest = in
	if _, rest, err = grammar.TakeWhile("request-line", 0, rest, grammar.IsWhitespace); err != nil {
		return line, in, err
	}

	if line.Method, line.MethodToken, rest, err = ParseMethod(rest); err != nil {
		return line, in, err
	}

	if _, rest, err = grammar.TakeWhile("request-line", 1, rest, grammar.IsWhitespace); err != nil {
		return line, in, err
	}

	if line.URI, rest, err = ParseRequestURI(rest); err != nil {
		return line, in, err
	}

	if _, rest, err = grammar.TakeWhile("request-line", 1, rest, grammar.IsWhitespace); err != nil {
		return line, in, err
	}

	if line.Version, rest, err = ParseVersion(rest); err != nil {
		return line, in, err
	}

	if rest, err = skipUntilCRLF(rest); err != nil {
		return line, in, err
	}

	return line, rest, nil
}

// skipUntilCRLF skips whitespace up to and including the first CRLF.
func skipUntilCRLF(in grammar.Input) (grammar.Input, error) {
	data := in.Bytes()

	for i, char := range data {
		if char == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			return in.Advance(i + 2), nil
		}

		if !grammar.IsWhitespace(char) {
			return in, grammar.Malformed("request-line", in.Advance(i))
		}
	}

	if in.IsPartial() {
		return in, grammar.ErrIncomplete
	}

	return in, grammar.Malformed("request-line", in)
}

// SkipLWS consumes any amount of linear white space, that is an optional CRLF followed
// by at least one SP or HT. A CRLF at the very end of partial input can't be told apart
// from a folded line yet, so more data is requested.
func SkipLWS(in grammar.Input) (grammar.Input, error) {
	for {
		data := in.Bytes()

		switch {
		case len(data) == 0:
			if in.IsPartial() {
				return in, grammar.ErrIncomplete
			}

			return in, nil
		case grammar.IsBlank(data[0]):
			in = in.Advance(1)
		case data[0] == '\r':
			if len(data) < 3 {
				if in.IsPartial() && (len(data) == 1 || data[1] == '\n') {
					return in, grammar.ErrIncomplete
				}

				return in, nil
			}

			if data[1] != '\n' || !grammar.IsBlank(data[2]) {
				return in, nil
			}

			in = in.Advance(3)
		default:
			return in, nil
		}
	}
}

// ParseFieldName consumes optional leading LWS and the name up to the colon, which is
// left unconsumed. Trailing whitespace is trimmed off the name. A line break before
// the colon is malformed.
func ParseFieldName(in grammar.Input) ([]byte, grammar.Input, error) {
	rest, err := SkipLWS(in)
	if err != nil {
		return nil, in, err
	}

	data := rest.Bytes()
	for i, char := range data {
		switch char {
		case ':':
			if i == 0 {
				return nil, in, grammar.Malformed("field-name", rest)
			}

			name := bytes.TrimRight(data[:i], " \t")
			return bytes.Clone(name), rest.Advance(i), nil
		case '\r', '\n':
			return nil, in, grammar.Malformed("field-name", rest)
		}
	}

	if rest.IsPartial() {
		return nil, in, grammar.ErrIncomplete
	}

	return nil, in, grammar.Malformed("field-name", rest)
}

// ParseFieldContent consumes a single non-empty token of non-whitespace bytes.
func ParseFieldContent(in grammar.Input) (http.FieldContent, grammar.Input, error) {
	content, rest, err := grammar.TakeWhile("field-content", 1, in, grammar.NotWhitespace)
	if err != nil {
		return nil, in, err
	}

	return bytes.Clone(content), rest, nil
}

// ParseFieldValue consumes field-content tokens separated by LWS, stripping the leading
// and trailing LWS. Zero tokens produce a nil value.
func ParseFieldValue(in grammar.Input) (value http.FieldValue, rest grammar.Input, err error) {
	if rest, err = SkipLWS(in); err != nil {
		return nil, in, err
	}

	for !rest.Empty() && !grammar.IsWhitespace(rest.Peek()) {
		var content http.FieldContent
		if content, rest, err = ParseFieldContent(rest); err != nil {
			return nil, in, err
		}

		value = append(value, content)

		if rest, err = SkipLWS(rest); err != nil {
			return nil, in, err
		}
	}

	return value, rest, nil
}

// ParseMessageHeader consumes a single header without its terminating CRLF.
func ParseMessageHeader(in grammar.Input) (header http.MessageHeader, rest grammar.Input, err error) {
	if header.Name, rest, err = ParseFieldName(in); err != nil {
		return header, in, err
	}

	if rest, err = grammar.Tag("message-header", ":", rest); err != nil {
		return header, in, err
	}

	if header.Value, rest, err = ParseFieldValue(rest); err != nil {
		return header, in, err
	}

	return header, rest, nil
}

// ParseHeaders consumes the header section: any number of CRLF-terminated headers
// followed by the blank line.
func ParseHeaders(in grammar.Input) (headers http.Headers, rest grammar.Input, err error) {
	rest = in

	for {
		if !rest.Empty() && rest.Peek() == '\r' {
			if rest, err = grammar.Tag("header-section", "\r\n", rest); err != nil {
				return nil, in, err
			}

			return headers, rest, nil
		}

		if rest.Empty() {
			if rest.IsPartial() {
				return nil, in, grammar.ErrIncomplete
			}

			return nil, in, grammar.Malformed("header-section", rest)
		}

		var header http.MessageHeader
		if header, rest, err = ParseMessageHeader(rest); err != nil {
			return nil, in, err
		}

		if rest, err = grammar.Tag("message-header", "\r\n", rest); err != nil {
			return nil, in, err
		}

		headers = append(headers, header)
	}
}

// ParseHead consumes the request line and the header section.
func ParseHead(in grammar.Input) (head Head, rest grammar.Input, err error) {
	if head.Line, rest, err = ParseRequestLine(in); err != nil {
		return head, in, err
	}

	if head.Headers, rest, err = ParseHeaders(rest); err != nil {
		return head, in, err
	}

	return head, rest, nil
}

// Body returns a rule consuming exactly n bytes of the message body. The result is
// never nil, even for zero-length bodies.
func Body(n int) grammar.Parser[[]byte] {
	return func(in grammar.Input) ([]byte, grammar.Input, error) {
		body, rest, err := grammar.Take("message-body", n, in)
		if err != nil {
			return nil, in, err
		}

		return append(make([]byte, 0, n), body...), rest, nil
	}
}

// ParseRequest parses a whole request out of the input. The body is read only if the
// headers declare a valid Content-Length, any bytes left over are returned untouched.
func ParseRequest(in grammar.Input) (*http.Request, grammar.Input, error) {
	head, rest, err := ParseHead(in)
	if err != nil {
		return nil, in, err
	}

	request := head.Request(nil)
	length, ok := request.ContentLength()
	if !ok {
		return request, rest, nil
	}

	if request.Body, rest, err = Body(length)(rest); err != nil {
		return nil, in, err
	}

	return request, rest, nil
}
