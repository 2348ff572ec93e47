package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/minihttp/transport"
)

var _ transport.Client = new(Client)

// Client replays the reads it was initialised with, one per call, and then reports
// io.EOF, unless looped. It also tracks all the written data, making it thereby a
// universal mock suitable for most of the tests.
type Client struct {
	closed   bool
	loop     bool
	pointer  int
	reads    []read
	written  []byte
	writeErr error
}

type read struct {
	data []byte
	err  error
}

func NewMockClient(data ...[]byte) *Client {
	c := new(Client)
	for _, piece := range data {
		c.reads = append(c.reads, read{data: piece})
	}

	return c
}

// Fail schedules a read resulting in the err.
func (c *Client) Fail(err error) *Client {
	c.reads = append(c.reads, read{err: err})
	return c
}

// Feed schedules more reads.
func (c *Client) Feed(data ...[]byte) *Client {
	for _, piece := range data {
		c.reads = append(c.reads, read{data: piece})
	}

	return c
}

// LoopReads starts over from the first read instead of reporting io.EOF.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// FailWrites makes every write fail with the err.
func (c *Client) FailWrites(err error) *Client {
	c.writeErr = err
	return c
}

func (c *Client) Read() ([]byte, error) {
	if c.closed {
		return nil, io.EOF
	}

	if c.pointer >= len(c.reads) {
		if !c.loop || len(c.reads) == 0 {
			return nil, io.EOF
		}

		c.pointer = 0
	}

	r := c.reads[c.pointer]
	c.pointer++

	return r.data, r.err
}

func (c *Client) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, p...)

	return len(p), nil
}

func (*Client) Remote() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4221}
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

func (c *Client) Closed() bool {
	return c.closed
}

func (c *Client) Written() string {
	return string(c.written)
}
