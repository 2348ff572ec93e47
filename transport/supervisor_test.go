package transport

import (
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/indigo-web/minihttp/config"
	"github.com/stretchr/testify/require"
)

type transportMock struct {
	stopped     *atomic.Bool
	closed      *atomic.Bool
	bindError   error
	once        bool
	loop        time.Duration
	returnError error
}

func newMock(loop time.Duration, returnError error, once bool) *transportMock {
	return &transportMock{
		stopped:     new(atomic.Bool),
		closed:      new(atomic.Bool),
		once:        once,
		loop:        loop,
		returnError: returnError,
	}
}

func (t *transportMock) Bind(string) error {
	return t.bindError
}

func (t *transportMock) Listen(config.NET, func(conn net.Conn)) error {
	for !t.stopped.Load() && !t.once {
		time.Sleep(t.loop)
	}

	return t.returnError
}

func (t *transportMock) Stop() {
	t.stopped.Store(true)
}

func (t *transportMock) Close() {
	t.closed.Store(true)
}

func (t *transportMock) Wait() {}

func runParallel(fn func() error) chan error {
	c := make(chan error, 1)

	go func() {
		c <- fn()
	}()

	return c
}

func runAtMost(sup *Supervisor, timeout time.Duration) error {
	select {
	case err := <-runParallel(func() error {
		return sup.Run(config.Default().NET)
	}):
		return err
	case <-time.After(timeout):
		return errors.New("supervisor timeouted")
	}
}

func TestSupervisor(t *testing.T) {
	newSupervisor := func(ts ...*transportMock) (*Supervisor, error) {
		sup := NewSupervisor()
		for _, transport := range ts {
			if err := sup.Add("", transport, nil); err != nil {
				return nil, err
			}
		}

		return &sup, nil
	}

	t.Run("die without error", func(t *testing.T) {
		first := newMock(100*time.Millisecond, nil, false)
		sup, err := newSupervisor(first, newMock(200*time.Millisecond, nil, true))
		require.NoError(t, err)
		require.NoError(t, runAtMost(sup, 300*time.Millisecond))
		require.True(t, first.stopped.Load())
		require.True(t, first.closed.Load())
	})

	t.Run("die with error", func(t *testing.T) {
		failure := errors.New("listen failed")
		sup, err := newSupervisor(
			newMock(100*time.Millisecond, nil, false),
			newMock(200*time.Millisecond, failure, true),
		)
		require.NoError(t, err)
		require.ErrorIs(t, runAtMost(sup, 300*time.Millisecond), failure)

		// must not block once Run has returned
		sup.Stop()
	})

	t.Run("stop", func(t *testing.T) {
		sup, err := newSupervisor(
			newMock(10*time.Millisecond, nil, false),
			newMock(20*time.Millisecond, nil, false),
		)
		require.NoError(t, err)
		c := runParallel(func() error {
			return sup.Run(config.Default().NET)
		})
		time.Sleep(50 * time.Millisecond)
		c2 := runParallel(func() error {
			sup.Stop()
			return nil
		})

		select {
		case err = <-c2:
			require.NoError(t, err)
		case <-time.After(300 * time.Millisecond):
			require.Fail(t, "supervisor did not stop on time")
		}

		select {
		case err = <-c:
			require.NoError(t, err)
		case <-time.After(50 * time.Millisecond):
			require.Fail(t, "supervisor did not stop running on time")
		}
	})

	t.Run("bind failure", func(t *testing.T) {
		bound := newMock(time.Millisecond, nil, false)
		broken := newMock(time.Millisecond, nil, false)
		broken.bindError = errors.New("address in use")

		sup := NewSupervisor()
		require.NoError(t, sup.Add("", bound, nil))
		require.Error(t, sup.Add("", broken, nil))
		require.True(t, bound.closed.Load())
	})

	t.Run("nothing to run", func(t *testing.T) {
		sup := NewSupervisor()
		require.Error(t, sup.Run(config.Default().NET))
	})
}
