package transport

import (
	"net"

	"github.com/indigo-web/minihttp/config"
)

// Transport accepts connections and hands each of them to the callback in its own
// goroutine.
type Transport interface {
	Bind(addr string) error
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	// Stop makes Listen return and closes all the live connections.
	Stop()
	// Wait blocks until every callback has returned.
	Wait()
	Close()
}
