package status

import "strconv"

type (
	Code   uint16
	Status string
)

// Codes the server is able to respond with. OK, Created and NotFound are produced by the
// routes, the rest are reserved for requests the server cannot or must not fulfil.
const (
	OK      Code = 200 // RFC 9110, 15.3.1
	Created Code = 201 // RFC 9110, 15.3.2

	BadRequest Code = 400 // RFC 9110, 15.5.1
	NotFound   Code = 404 // RFC 9110, 15.5.5
	Conflict   Code = 409 // RFC 9110, 15.5.10

	InternalServerError Code = 500 // RFC 9110, 15.6.1
)

// Text returns a reason phrase for the code. It returns the empty string if the code
// is unknown.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case Created:
		return "Created"
	case BadRequest:
		return "Bad Request"
	case NotFound:
		return "Not Found"
	case Conflict:
		return "Conflict"
	case InternalServerError:
		return "Internal Server Error"
	}

	return ""
}

// StringCode returns the decimal representation of the code.
func StringCode(code Code) string {
	switch code {
	case OK:
		return "200"
	case Created:
		return "201"
	case BadRequest:
		return "400"
	case NotFound:
		return "404"
	case Conflict:
		return "409"
	case InternalServerError:
		return "500"
	}

	return strconv.Itoa(int(code))
}

// Ptr returns a pointer to the copy of the code. Used where a code is optional.
func Ptr(code Code) *Code {
	return &code
}
