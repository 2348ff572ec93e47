// Package codec implements content codings applied to response bodies.
package codec

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// GZIP compresses bodies in the gzip format. A single instance reuses its writer and
// must therefore be owned by a single connection.
type GZIP struct {
	writer *gzip.Writer
	buff   bytes.Buffer
}

func NewGZIP(level int) (*GZIP, error) {
	writer, err := gzip.NewWriterLevel(nil, level)
	if err != nil {
		return nil, errors.Wrap(err, "gzip")
	}

	return &GZIP{writer: writer}, nil
}

// Token is the content-coding name, as used in Accept-Encoding and Content-Encoding.
func (*GZIP) Token() string {
	return "gzip"
}

// Encode appends the complete gzip stream of src to dst.
func (g *GZIP) Encode(dst, src []byte) ([]byte, error) {
	g.buff.Reset()
	g.writer.Reset(&g.buff)

	if _, err := g.writer.Write(src); err != nil {
		return dst, errors.Wrap(err, "gzip")
	}

	if err := g.writer.Close(); err != nil {
		return dst, errors.Wrap(err, "gzip")
	}

	return append(dst, g.buff.Bytes()...), nil
}
