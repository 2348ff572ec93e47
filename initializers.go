package minihttp

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/indigo-web/minihttp/config"
	"github.com/indigo-web/minihttp/internal/storage"
	"github.com/indigo-web/minihttp/router"
	"github.com/indigo-web/minihttp/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func newClient(cfg config.NET, conn net.Conn) transport.Client {
	readBuff := make([]byte, cfg.ReadBufferSize)

	return transport.NewClient(conn, cfg.ReadTimeout, readBuff)
}

func newLogger(cfg config.Log) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), errors.Wrap(err, "log level")
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// newRouter returns the router serving files from the directory, if any. The directory
// must exist.
func newRouter(cfg config.Files) (router.Router, error) {
	if len(cfg.Directory) == 0 {
		return router.New(nil), nil
	}

	info, err := os.Stat(cfg.Directory)
	if err != nil {
		return nil, errors.Wrap(err, "files directory")
	}

	if !info.IsDir() {
		return nil, errors.Errorf("files directory: %s is not a directory", cfg.Directory)
	}

	return router.New(storage.NewDir(cfg.Directory)), nil
}
