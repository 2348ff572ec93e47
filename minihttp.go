// Package minihttp is a minimal HTTP/1.1 server answering a fixed set of routes: /,
// /echo/{text}, /user-agent and /files/{name}.
package minihttp

import (
	"net"

	"github.com/indigo-web/minihttp/config"
	httpserver "github.com/indigo-web/minihttp/internal/server/http"
	"github.com/indigo-web/minihttp/transport"
	"github.com/rs/zerolog"
)

type hooks struct {
	OnStart, OnStop func()
}

// App is the server application. It is configured by chaining calls and started by Serve.
type App struct {
	addr       string
	cfg        *config.Config
	logger     *zerolog.Logger
	hooks      hooks
	tcp        *transport.TCP
	supervisor transport.Supervisor
}

// New returns a new App instance listening on the addr once served.
func New(addr string) *App {
	return &App{
		addr:       addr,
		cfg:        config.Default(),
		tcp:        transport.NewTCP(),
		supervisor: transport.NewSupervisor(),
	}
}

// Tune replaces the default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the default logger, which writes human-readable records to stderr at
// the level set by config.
func (a *App) Logger(logger zerolog.Logger) *App {
	a.logger = &logger
	return a
}

// OnStart calls the callback at the moment the listener is bound. Connections made from
// the callback will be served.
func (a *App) OnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// OnStop calls the callback after the server is down: the listener is closed and all the
// connections are served.
func (a *App) OnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Addr returns the address the server is listening on. It's nil unless the server has
// started.
func (a *App) Addr() net.Addr {
	return a.tcp.Addr()
}

// Serve binds the address and serves connections until either Stop is called or
// the listener fails.
func (a *App) Serve() error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger, err := a.getLogger()
	if err != nil {
		return err
	}

	r, err := newRouter(a.cfg.Files)
	if err != nil {
		return err
	}

	server := httpserver.NewServer(r, a.cfg, logger)
	if err = a.supervisor.Add(a.addr, a.tcp, a.newTCPCallback(server)); err != nil {
		return err
	}

	logger.Info().
		Stringer("addr", a.tcp.Addr()).
		Str("directory", a.cfg.Files.Directory).
		Msg("listening")

	callIfNotNil(a.hooks.OnStart)
	err = a.supervisor.Run(a.cfg.NET)
	callIfNotNil(a.hooks.OnStop)

	if err != nil {
		logger.Error().Err(err).Msg("server is down")
		return err
	}

	logger.Info().Msg("server stopped")

	return nil
}

// Stop stops accepting connections, closes the live ones and waits until Serve
// returns.
func (a *App) Stop() {
	a.supervisor.Stop()
}

func (a *App) getLogger() (zerolog.Logger, error) {
	if a.logger != nil {
		return *a.logger, nil
	}

	return newLogger(a.cfg.Log)
}

func (a *App) newTCPCallback(server *httpserver.Server) func(net.Conn) {
	return func(conn net.Conn) {
		server.Run(newClient(a.cfg.NET, conn))
	}
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
