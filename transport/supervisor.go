package transport

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/indigo-web/minihttp/config"
	"github.com/pkg/errors"
)

// Supervisor runs bound transports and brings all of them down as soon as any of them
// fails or Stop is called.
type Supervisor struct {
	ts       []boundTransport
	running  *atomic.Bool
	stopOnce *sync.Once
	stopch   chan struct{}
	done     chan struct{}
}

func NewSupervisor() Supervisor {
	return Supervisor{
		running:  new(atomic.Bool),
		stopOnce: new(sync.Once),
		stopch:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Add binds the transport to the address. If binding fails, every transport added so
// far is closed.
func (s *Supervisor) Add(addr string, transport Transport, cb func(net.Conn)) error {
	if err := transport.Bind(addr); err != nil {
		s.close()
		return err
	}

	s.ts = append(s.ts, boundTransport{
		cb: cb,
		t:  transport,
	})

	return nil
}

// Run listens on all the transports and blocks until they are stopped. The first error
// returned by any of them is returned, after the rest are stopped, too.
func (s *Supervisor) Run(cfg config.NET) error {
	if len(s.ts) == 0 {
		return errors.New("no transports to run")
	}

	s.running.Store(true)
	defer close(s.done)

	errch := make(chan error, len(s.ts))

	for _, t := range s.ts {
		go func(t boundTransport) {
			errch <- t.t.Listen(cfg, t.cb)
		}(t)
	}

	var err error

	select {
	case err = <-errch:
		s.shutdown()
		drain(errch, len(s.ts)-1)
	case <-s.stopch:
		s.shutdown()
		drain(errch, len(s.ts))
	}

	return err
}

// Stop makes Run return and waits until it does. Calling Stop before Run is no-op.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopch)
	})

	if s.running.Load() {
		<-s.done
	}
}

func (s *Supervisor) shutdown() {
	for _, t := range s.ts {
		t.t.Stop()
	}

	for _, t := range s.ts {
		t.t.Wait()
		t.t.Close()
	}
}

func (s *Supervisor) close() {
	for _, t := range s.ts {
		t.t.Close()
	}
}

type boundTransport struct {
	cb func(conn net.Conn)
	t  Transport
}

func drain(ch <-chan error, n int) {
	for range n {
		<-ch
	}
}
