package router

import (
	"io/fs"
	"unicode/utf8"

	"github.com/indigo-web/minihttp/http"
	"github.com/indigo-web/minihttp/http/method"
	"github.com/indigo-web/minihttp/http/status"
	"github.com/indigo-web/utils/uf"
	"github.com/pkg/errors"
)

// Storage is where the files route reads and creates files.
type Storage interface {
	// ReadFile returns an error matching fs.ErrNotExist if there's no such file, and
	// fs.ErrInvalid if the name is not acceptable.
	ReadFile(name string) ([]byte, error)
	// CreateExclusive returns an error matching fs.ErrExist if the file already exists.
	CreateExclusive(name string, data []byte) error
}

// Outcome is what a route contributes to the response. Nil Status leaves the default
// code in place. Err describes what went wrong, if anything, and is never sent to
// the client.
type Outcome struct {
	Status  *status.Code
	Headers []http.MessageHeader
	Body    []byte
	Err     error
}

// Router turns requests and errors into outcomes.
type Router interface {
	OnRequest(request *http.Request) Outcome
	OnError(err error) Outcome
}

// Default is the router serving the fixed set of routes. Nil storage means the server
// was started without a files directory.
type Default struct {
	storage Storage
}

func New(storage Storage) *Default {
	return &Default{storage: storage}
}

func (d *Default) OnRequest(request *http.Request) Outcome {
	return Parse(request.Line.URI).Handle(request, d.storage)
}

// OnError maps errors onto their response codes. Anything besides a status.HTTPError
// is considered an internal error.
func (d *Default) OnError(err error) Outcome {
	var httpErr status.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code == 0 {
		return Outcome{Status: status.Ptr(status.InternalServerError), Err: err}
	}

	return Outcome{Status: status.Ptr(httpErr.Code), Err: err}
}

// Handle runs the route against the request.
func (r Route) Handle(request *http.Request, storage Storage) Outcome {
	switch r.Kind {
	case Root:
		if request.Method() == method.GET {
			return Outcome{Status: status.Ptr(status.OK)}
		}
	case Echo:
		if request.Method() == method.GET {
			return plain(r.Arg)
		}
	case UserAgent:
		if request.Method() != method.GET {
			break
		}

		if userAgent := request.FirstValueContent("User-Agent"); userAgent != nil {
			return plain(userAgent)
		}
	case Files:
		return r.handleFiles(request, storage)
	case Unknown:
		return Outcome{Status: status.Ptr(status.NotFound)}
	}

	return Outcome{}
}

func (r Route) handleFiles(request *http.Request, storage Storage) Outcome {
	switch request.Method() {
	case method.GET, method.POST:
	default:
		return Outcome{}
	}

	if storage == nil {
		return failure(status.ErrNoDirectory, nil)
	}

	if !utf8.Valid(r.Arg) {
		return Outcome{Status: status.Ptr(status.NotFound)}
	}

	filename := uf.B2S(r.Arg)

	if request.Method() == method.GET {
		content, err := storage.ReadFile(filename)
		if err != nil {
			return fileFailure(err)
		}

		return Outcome{
			Status:  status.Ptr(status.OK),
			Headers: []http.MessageHeader{http.NewHeader("Content-Type", "application/octet-stream")},
			Body:    content,
		}
	}

	if err := storage.CreateExclusive(filename, request.Body); err != nil {
		return fileFailure(err)
	}

	return Outcome{Status: status.Ptr(status.Created)}
}

func plain(body []byte) Outcome {
	return Outcome{
		Status:  status.Ptr(status.OK),
		Headers: []http.MessageHeader{http.NewHeader("Content-Type", "text/plain")},
		Body:    body,
	}
}

func fileFailure(err error) Outcome {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid):
		return failure(status.ErrNotFound, err)
	case errors.Is(err, fs.ErrExist):
		return failure(status.ErrFileExists, err)
	default:
		return failure(status.ErrInternalServerError, err)
	}
}

func failure(httpErr error, cause error) Outcome {
	code := httpErr.(status.HTTPError).Code
	if cause != nil {
		httpErr = errors.Wrap(cause, httpErr.Error())
	}

	return Outcome{Status: status.Ptr(code), Err: httpErr}
}
