package proto

import "strconv"

// Version is the protocol version of a message, as in "HTTP/" major "." minor.
type Version struct {
	Major, Minor uint
}

var (
	HTTP10 = Version{Major: 1, Minor: 0}
	HTTP11 = Version{Major: 1, Minor: 1}
)

// AppendTo renders the version as a protocol token, e.g. HTTP/1.1, into the buffer.
func (v Version) AppendTo(buff []byte) []byte {
	buff = append(buff, "HTTP/"...)
	buff = strconv.AppendUint(buff, uint64(v.Major), 10)
	buff = append(buff, '.')

	return strconv.AppendUint(buff, uint64(v.Minor), 10)
}

func (v Version) String() string {
	return string(v.AppendTo(nil))
}

// AtLeast reports whether the version is not older than major.minor.
func (v Version) AtLeast(major, minor uint) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}
