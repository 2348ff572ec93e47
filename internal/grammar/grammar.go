// Package grammar holds the building blocks for stream-friendly parsers. A parser
// consumes a prefix of the Input and either produces a value, reports that the input
// ends too early to decide (ErrIncomplete), or rejects it with a *SyntaxError.
//
// Whether the end of input means "wait for more" or "end of the field" is decided by
// the Input itself: partial inputs are cut off by the network, complete ones are not.
package grammar

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/indigo-web/utils/uf"
	"github.com/pkg/errors"
)

// ErrIncomplete is returned by a partial-mode parser which can't decide before it sees
// more bytes.
var ErrIncomplete = errors.New("incomplete input")

// remainderPreview limits how much of the unparsed remainder gets into error messages.
const remainderPreview = 32

// SyntaxError reports malformed input together with the unparsed remainder.
type SyntaxError struct {
	Rule      string
	Remainder []byte
}

func (s *SyntaxError) Error() string {
	remainder := s.Remainder
	if len(remainder) > remainderPreview {
		remainder = remainder[:remainderPreview]
	}

	return fmt.Sprintf("malformed %s at %s", s.Rule, strconv.Quote(uf.B2S(remainder)))
}

// Malformed produces a SyntaxError for the rule, pinned at the current position.
func Malformed(rule string, in Input) error {
	return errors.WithStack(&SyntaxError{
		Rule:      rule,
		Remainder: bytes.Clone(in.data),
	})
}

// IsIncomplete reports whether the err asks for more input.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

// Parser is a single grammar rule. On success, the returned Input starts right after
// the consumed bytes.
type Parser[T any] func(in Input) (T, Input, error)

// Input is an immutable view over the bytes being parsed.
type Input struct {
	data    []byte
	partial bool
}

// Partial returns an input which may be followed by more bytes.
func Partial(data []byte) Input {
	return Input{data: data, partial: true}
}

// Complete returns an input whose end is the end of the stream.
func Complete(data []byte) Input {
	return Input{data: data}
}

func (i Input) Bytes() []byte {
	return i.data
}

func (i Input) Len() int {
	return len(i.data)
}

func (i Input) Empty() bool {
	return len(i.data) == 0
}

func (i Input) IsPartial() bool {
	return i.partial
}

// Offset returns how many bytes were consumed since the start.
func (i Input) Offset(start Input) int {
	return len(start.data) - len(i.data)
}

func (i Input) Advance(n int) Input {
	i.data = i.data[n:]
	return i
}

// Peek returns the first byte. Must not be called on an empty input.
func (i Input) Peek() byte {
	return i.data[0]
}

// starve returns what an exhausted input means for the rule: more data is wanted for
// partial input and the rule fails otherwise.
func starve(rule string, in Input) error {
	if in.partial {
		return ErrIncomplete
	}

	return Malformed(rule, in)
}

// Tag matches the literal.
func Tag(rule, literal string, in Input) (Input, error) {
	n := min(len(literal), len(in.data))
	if uf.B2S(in.data[:n]) != literal[:n] {
		return in, Malformed(rule, in)
	}

	if n < len(literal) {
		return in, starve(rule, in)
	}

	return in.Advance(n), nil
}

// TakeWhile consumes the longest run of bytes satisfying the predicate. The run must be
// at least min bytes long. In partial mode, a run reaching the end of input is never
// considered finished.
func TakeWhile(rule string, minLen int, in Input, pred func(byte) bool) ([]byte, Input, error) {
	for i, char := range in.data {
		if !pred(char) {
			if i < minLen {
				return nil, in, Malformed(rule, in)
			}

			return in.data[:i], in.Advance(i), nil
		}
	}

	if in.partial || len(in.data) < minLen {
		return nil, in, starve(rule, in)
	}

	return in.data, in.Advance(len(in.data)), nil
}

// Take consumes exactly n bytes.
func Take(rule string, n int, in Input) ([]byte, Input, error) {
	if len(in.data) < n {
		return nil, in, starve(rule, in)
	}

	return in.data[:n], in.Advance(n), nil
}

// IsWhitespace matches SP, HT, CR and LF.
func IsWhitespace(char byte) bool {
	switch char {
	case ' ', '\t', '\r', '\n':
		return true
	}

	return false
}

// IsBlank matches SP and HT.
func IsBlank(char byte) bool {
	return char == ' ' || char == '\t'
}

func IsAlpha(char byte) bool {
	return (char|0x20) >= 'a' && (char|0x20) <= 'z'
}

func IsDigit(char byte) bool {
	return char >= '0' && char <= '9'
}

func NotWhitespace(char byte) bool {
	return !IsWhitespace(char)
}
