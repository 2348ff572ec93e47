package status

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrBadRequest          = NewError(BadRequest, "bad request")
	ErrNotFound            = NewError(NotFound, "not found")
	ErrFileExists          = NewError(Conflict, "file already exists")
	ErrNoDirectory         = NewError(InternalServerError, "files directory is not configured")
	ErrInternalServerError = NewError(InternalServerError, "internal server error")
)
