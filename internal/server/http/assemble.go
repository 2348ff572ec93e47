package http

import (
	"bytes"

	"github.com/indigo-web/minihttp/http"
	"github.com/indigo-web/minihttp/http/proto"
	"github.com/indigo-web/minihttp/internal/codec"
	"github.com/indigo-web/minihttp/router"
)

// assembler turns route outcomes into responses. The response and the codec are reused,
// so a single assembler belongs to a single connection.
type assembler struct {
	response *http.Response
	gzip     *codec.GZIP
}

func newAssembler(gzip *codec.GZIP) *assembler {
	return &assembler{
		response: http.NewResponse(proto.HTTP11),
		gzip:     gzip,
	}
}

// Assemble builds the response to the request. The returned response is valid until the
// next call.
func (a *assembler) Assemble(request *http.Request, outcome router.Outcome) (*http.Response, error) {
	response := a.response.Reset(request.Line.Version)
	apply(response, outcome)

	if response.HasBody() && acceptsEncoding(request, a.gzip.Token()) {
		encoded, err := a.gzip.Encode(nil, response.Body)
		if err != nil {
			return nil, err
		}

		response.Body = encoded
		response.Header("Content-Encoding", a.gzip.Token())
	}

	return frame(response), nil
}

// AssembleError builds a response for the cases where there's no request to respond to,
// or the response to it could not be built.
func (a *assembler) AssembleError(version proto.Version, outcome router.Outcome) *http.Response {
	response := a.response.Reset(version)
	apply(response, outcome)

	return frame(response)
}

func apply(response *http.Response, outcome router.Outcome) {
	if outcome.Status != nil {
		response.WithCode(*outcome.Status)
	}

	for _, header := range outcome.Headers {
		response.SetHeader(header)
	}

	response.Append(outcome.Body)
}

func frame(response *http.Response) *http.Response {
	if response.HasBody() {
		response.ContentLength(len(response.Body))
	}

	return response
}

// acceptsEncoding reports whether the last Accept-Encoding header lists the coding. The
// tokens are compared case-sensitively.
func acceptsEncoding(request *http.Request, coding string) bool {
	header, found := request.FindHeader("Accept-Encoding")
	if !found {
		return false
	}

	for _, token := range bytes.Split(header.Value.Join(' '), []byte(",")) {
		if string(bytes.TrimSpace(token)) == coding {
			return true
		}
	}

	return false
}
