package config

import (
	"os"
	"time"
	"unsafe"

	"github.com/indigo-web/utils/strcomp"
	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

type (
	NET struct {
		// ReadBufferSize is the initial capacity of the per-connection buffer. The buffer
		// grows beyond it whenever a single message doesn't fit.
		ReadBufferSize int
		// MaxHeadSize caps the request-line and headers together. Requests whose head
		// doesn't fit are rejected with 400.
		MaxHeadSize int
		// ReadTimeout bounds a single read from the socket. Expired reads are considered
		// transient and retried.
		ReadTimeout time.Duration
		// IdleTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		IdleTimeout time.Duration
		// RetryBackoff is how long to sleep before retrying a read that failed transiently.
		RetryBackoff time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
	}

	Files struct {
		// Directory is the base directory served by the /files/ route. Empty value
		// means there's none, and such requests are answered with 500.
		Directory string `test:"nullable"`
	}

	Encoding struct {
		// GZIPLevel is the compression level of gzip-encoded response bodies.
		GZIPLevel int
	}

	Log struct {
		// Level is a zerolog level name: trace, debug, info, warn, error or disabled.
		Level string
	}
)

// Config holds settings used across various parts of the server, mainly timeouts and
// pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	NET      NET
	Files    Files
	Encoding Encoding
	Log      Log
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadBufferSize:            4 * 1024,
			MaxHeadSize:               64 * 1024,
			ReadTimeout:               5 * time.Second,
			IdleTimeout:               90 * time.Second,
			RetryBackoff:              10 * time.Millisecond,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		Encoding: Encoding{
			GZIPLevel: gzip.DefaultCompression,
		},
		Log: Log{
			Level: "info",
		},
	}
}

var json = jsoniter.Config{
	EscapeHTML:             true,
	DisallowUnknownFields:  true,
	ValidateJsonRawMessage: true,
}.Froze()

func init() {
	jsoniter.RegisterTypeDecoderFunc("time.Duration", decodeDuration)
}

// decodeDuration accepts both Go duration strings ("1m30s") and plain nanoseconds.
func decodeDuration(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	switch iter.WhatIsNext() {
	case jsoniter.StringValue:
		d, err := time.ParseDuration(iter.ReadString())
		if err != nil {
			iter.ReportError("decode duration", err.Error())
			return
		}

		*(*time.Duration)(ptr) = d
	case jsoniter.NumberValue:
		*(*time.Duration)(ptr) = time.Duration(iter.ReadInt64())
	default:
		iter.ReportError("decode duration", "must be either a string or a number")
	}
}

// Load reads the JSON file at path and overlays it on top of the defaults. Fields absent
// in the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	return Parse(data)
}

// Parse is the same as Load, but takes the file contents directly.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var levels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Validate rejects values the server cannot operate with.
func (c *Config) Validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return errors.Errorf("NET.ReadBufferSize must be positive, got %d", c.NET.ReadBufferSize)
	case c.NET.MaxHeadSize <= 0:
		return errors.Errorf("NET.MaxHeadSize must be positive, got %d", c.NET.MaxHeadSize)
	case c.NET.ReadTimeout <= 0:
		return errors.Errorf("NET.ReadTimeout must be positive, got %s", c.NET.ReadTimeout)
	case c.NET.IdleTimeout < c.NET.ReadTimeout:
		return errors.Errorf(
			"NET.IdleTimeout (%s) must not be shorter than NET.ReadTimeout (%s)",
			c.NET.IdleTimeout, c.NET.ReadTimeout,
		)
	case c.NET.RetryBackoff < 0:
		return errors.Errorf("NET.RetryBackoff must not be negative, got %s", c.NET.RetryBackoff)
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return errors.Errorf(
			"NET.AcceptLoopInterruptPeriod must be positive, got %s", c.NET.AcceptLoopInterruptPeriod,
		)
	case c.Encoding.GZIPLevel < gzip.HuffmanOnly || c.Encoding.GZIPLevel > gzip.BestCompression:
		return errors.Errorf("Encoding.GZIPLevel is out of range: %d", c.Encoding.GZIPLevel)
	}

	for _, level := range levels {
		if strcomp.EqualFold(level, c.Log.Level) {
			return nil
		}
	}

	return errors.Errorf("Log.Level is unknown: %q", c.Log.Level)
}
