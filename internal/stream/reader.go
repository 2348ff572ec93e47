// Package stream runs grammar rules over a connection that yields bytes in arbitrary
// fragments.
package stream

import (
	"io"
	"net"
	"syscall"
	"time"

	"github.com/indigo-web/minihttp/config"
	"github.com/indigo-web/minihttp/internal/grammar"
	"github.com/pkg/errors"
)

var (
	// ErrUnexpectedEOF is returned when the stream ends in the middle of a message.
	ErrUnexpectedEOF = errors.New("unexpected end of stream")
	// ErrIdle is returned when nothing was received for longer than the idle timeout.
	ErrIdle = errors.New("connection is idle for too long")
	// ErrTooLarge is returned when the opening part of a message exceeds NET.MaxHeadSize.
	ErrTooLarge = errors.New("message head is too large")
)

// Source produces the next fragment of the stream. The returned slice is only valid until
// the next call. Zero bytes without an error are treated as the end of the stream.
type Source interface {
	Read() ([]byte, error)
}

// Reader owns the unconsumed bytes of a single connection. It is not safe for concurrent
// use.
type Reader struct {
	src  Source
	cfg  config.NET
	buff []byte
	eof  bool
}

func New(src Source, cfg config.NET) *Reader {
	return &Reader{
		src:  src,
		cfg:  cfg,
		buff: make([]byte, 0, cfg.ReadBufferSize),
	}
}

// Buffered returns the number of bytes received but not consumed yet.
func (r *Reader) Buffered() int {
	return len(r.buff)
}

// Reset drops everything buffered and starts over with the new source.
func (r *Reader) Reset(src Source) {
	r.src = src
	r.buff = r.buff[:0]
	r.eof = false
}

// Parse runs the rule opening a new message over the buffered bytes, reading more
// whenever the rule asks for it. On success, the consumed bytes are dropped and the rest
// is kept for the next call.
//
// If the stream ends cleanly between messages, io.EOF is returned. If it ends in the middle
// of one, the rule gets a last chance over the buffered bytes treated as complete input,
// and ErrUnexpectedEOF is returned if it fails. Malformed input is reported as is and
// nothing is consumed. ErrTooLarge is returned once NET.MaxHeadSize bytes are buffered
// and the rule still asks for more.
func Parse[T any](r *Reader, rule grammar.Parser[T]) (T, error) {
	return parse(r, rule, true)
}

// Continue is Parse for the remainder of a message already opened by Parse. The stream
// ending at any point, even before the first byte, is ErrUnexpectedEOF. The remainder
// isn't limited in size.
func Continue[T any](r *Reader, rule grammar.Parser[T]) (T, error) {
	return parse(r, rule, false)
}

func parse[T any](r *Reader, rule grammar.Parser[T], opening bool) (value T, err error) {
	var idleSince time.Time

	for !r.eof {
		value, rest, err := rule(grammar.Partial(r.buff))
		if err == nil {
			r.consume(len(r.buff) - rest.Len())
			return value, nil
		}

		if !grammar.IsIncomplete(err) {
			return value, err
		}

		if opening && len(r.buff) >= r.cfg.MaxHeadSize {
			return value, ErrTooLarge
		}

		data, err := r.src.Read()
		r.buff = append(r.buff, data...)

		switch {
		case len(data) > 0:
			idleSince = time.Time{}
		case err == nil || errors.Is(err, io.EOF):
			r.eof = true
		case isTransient(err):
			if idleSince.IsZero() {
				idleSince = time.Now()
			}

			if time.Since(idleSince) >= r.cfg.IdleTimeout {
				return value, ErrIdle
			}

			time.Sleep(r.cfg.RetryBackoff)
		default:
			return value, err
		}
	}

	return finish(r, rule, opening)
}

// finish makes the last attempt over whatever is left after the stream has ended.
func finish[T any](r *Reader, rule grammar.Parser[T], opening bool) (value T, err error) {
	if opening && len(r.buff) == 0 {
		return value, io.EOF
	}

	value, rest, err := rule(grammar.Complete(r.buff))
	if err != nil {
		return value, errors.WithMessage(ErrUnexpectedEOF, err.Error())
	}

	r.consume(len(r.buff) - rest.Len())

	return value, nil
}

// consume drops n leading bytes. Leftovers are moved to the beginning, so the buffer
// doesn't grow by pipelined requests.
func (r *Reader) consume(n int) {
	r.buff = append(r.buff[:0], r.buff[n:]...)
}

func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
