package router

import (
	"bytes"

	"github.com/indigo-web/utils/uf"
)

// Kind enumerates the routes the server knows about.
type Kind uint8

const (
	Unknown Kind = iota
	Root
	Echo
	UserAgent
	Files
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case Echo:
		return "echo"
	case UserAgent:
		return "user-agent"
	case Files:
		return "files"
	}

	return "unknown"
}

// Route is derived from the request path only. Arg carries the echoed command for Echo
// and the file name for Files, and is nil for the rest.
type Route struct {
	Kind Kind
	Arg  []byte
}

// Parse splits the path by slashes and picks the route by the first segment. Whatever
// follows the first segment of /echo/ and /files/ is glued together with the slashes
// dropped.
func Parse(uri []byte) Route {
	segments := bytes.Split(uri, []byte("/"))
	if len(segments) < 2 {
		return Route{Kind: Unknown}
	}

	switch uf.B2S(segments[1]) {
	case "":
		return Route{Kind: Root}
	case "echo":
		return Route{Kind: Echo, Arg: bytes.Join(segments[2:], nil)}
	case "user-agent":
		return Route{Kind: UserAgent}
	case "files":
		return Route{Kind: Files, Arg: bytes.Join(segments[2:], nil)}
	default:
		return Route{Kind: Unknown}
	}
}
