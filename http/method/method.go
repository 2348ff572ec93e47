package method

import "github.com/indigo-web/utils/strcomp"

// Method is a closed set of known request methods. Every other token is an Extension,
// whose raw form is kept by the request line itself.
type Method uint8

const (
	Extension Method = iota
	GET
	POST
)

// Parse matches the token against known methods case-insensitively.
func Parse(token string) Method {
	switch len(token) {
	case 3:
		if strcomp.EqualFold(token, "get") {
			return GET
		}
	case 4:
		if strcomp.EqualFold(token, "post") {
			return POST
		}
	}

	return Extension
}

func (m Method) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	}

	return "Extension"
}
