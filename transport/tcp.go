package transport

import (
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/minihttp/config"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

type TCP struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
	// conns maps live connections to the moment they were accepted.
	conns *xsync.MapOf[net.Conn, time.Time]
}

func NewTCP() *TCP {
	tcp := newTCP(nil)
	return &tcp
}

func newTCP(l listener) TCP {
	return TCP{
		l:     l,
		wg:    new(sync.WaitGroup),
		stop:  new(atomic.Bool),
		conns: xsync.NewMapOf[net.Conn, time.Time](),
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) error {
	l, err := bindTCP(addr)
	if err != nil {
		return errors.Wrapf(err, "bind %s", addr)
	}

	t.l = l

	return nil
}

// Addr returns the address the transport is bound to, or nil if it isn't.
func (t *TCP) Addr() net.Addr {
	if t.l == nil {
		return nil
	}

	return t.l.Addr()
}

func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	for !t.stop.Load() {
		err := t.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			if t.stop.Load() {
				return nil
			}

			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case t.stop.Load() && errors.Is(err, net.ErrClosed):
				return nil
			}

			return err
		}

		t.track(conn)
		t.wg.Add(1)

		go func(conn net.Conn) {
			defer t.wg.Done()
			defer t.untrack(conn)

			cb(conn)
		}(conn)
	}

	return nil
}

func (t *TCP) track(conn net.Conn) {
	t.conns.Store(conn, time.Now())

	// Stop might have swept the connections right before this one got stored.
	if t.stop.Load() {
		_ = conn.Close()
	}
}

func (t *TCP) untrack(conn net.Conn) {
	t.conns.Delete(conn)
	_ = conn.Close()
}

// Connections returns the number of live connections.
func (t *TCP) Connections() int {
	return t.conns.Size()
}

func (t *TCP) Stop() {
	t.stop.Store(true)
	t.Close()

	t.conns.Range(func(conn net.Conn, _ time.Time) bool {
		_ = conn.Close()
		return true
	})
}

func (t *TCP) Close() {
	if t.l != nil {
		_ = t.l.Close()
	}
}

func (t *TCP) Wait() {
	t.wg.Wait()
}
