package http

import (
	"io"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/minihttp/config"
	"github.com/indigo-web/minihttp/http/proto"
	"github.com/indigo-web/minihttp/http/status"
	"github.com/indigo-web/minihttp/internal/codec"
	"github.com/indigo-web/minihttp/internal/grammar"
	"github.com/indigo-web/minihttp/internal/protocol/http1"
	"github.com/indigo-web/minihttp/internal/stream"
	"github.com/indigo-web/minihttp/router"
	"github.com/indigo-web/minihttp/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// connIDLength is the length of the random connection id attached to log records.
const connIDLength = 8

// Server serves HTTP/1.x connections. It is safe to use from multiple goroutines, as all
// the mutable state lives in per-connection sessions.
type Server struct {
	router router.Router
	cfg    *config.Config
	logger zerolog.Logger
}

func NewServer(r router.Router, cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		router: r,
		cfg:    cfg,
		logger: logger,
	}
}

// session is everything a single connection owns.
type session struct {
	client     transport.Client
	reader     *stream.Reader
	serializer *http1.Serializer
	assembler  *assembler
	logger     zerolog.Logger
}

// Run serves the client until either side decides to close the connection. The client
// is always closed on return.
func (s *Server) Run(client transport.Client) {
	logger := s.logger.With().
		Str("conn", uniuri.NewLen(connIDLength)).
		Stringer("remote", client.Remote()).
		Logger()

	defer func() {
		if err := client.Close(); err != nil {
			logger.Debug().Err(err).Msg("close connection")
		}
	}()

	gzip, err := codec.NewGZIP(s.cfg.Encoding.GZIPLevel)
	if err != nil {
		logger.Error().Err(err).Msg("initialize codec")
		return
	}

	sess := &session{
		client:     client,
		reader:     stream.New(client, s.cfg.NET),
		serializer: http1.NewSerializer(make([]byte, 0, s.cfg.NET.ReadBufferSize)),
		assembler:  newAssembler(gzip),
		logger:     logger,
	}

	logger.Debug().Msg("connection accepted")

	for s.handleRequest(sess) {
	}
}

// handleRequest reads, processes and responds to a single request. It returns whether the
// connection may serve further requests.
func (s *Server) handleRequest(sess *session) (ok bool) {
	head, err := stream.Parse(sess.reader, http1.ParseHead)
	if err != nil {
		return s.onError(sess, err)
	}

	request := head.Request(nil)
	if length, valid := request.ContentLength(); valid {
		if request.Body, err = stream.Continue(sess.reader, http1.Body(length)); err != nil {
			return s.onError(sess, err)
		}
	}

	outcome := s.router.OnRequest(request)
	if outcome.Err != nil {
		sess.logger.Warn().Err(outcome.Err).Bytes("uri", request.Line.URI).Msg("route failed")
	}

	response, err := sess.assembler.Assemble(request, outcome)
	if err != nil {
		sess.logger.Error().Err(err).Msg("assemble response")
		response = sess.assembler.AssembleError(request.Line.Version, s.router.OnError(err))
	}

	if err = sess.serializer.Write(response, sess.client); err != nil {
		sess.logger.Debug().Err(err).Msg("write response")
		return false
	}

	sess.logger.Debug().
		Bytes("method", request.Line.MethodToken).
		Bytes("uri", request.Line.URI).
		Stringer("proto", request.Line.Version).
		Uint16("status", uint16(response.Code)).
		Int("bytes", len(response.Body)).
		Msg("request served")

	return request.KeepAlive()
}

// onError decides what happens to the connection after a failed read. Malformed requests
// are answered before closing, nothing can be answered otherwise.
func (s *Server) onError(sess *session, err error) bool {
	var syntaxErr *grammar.SyntaxError

	switch {
	case errors.Is(err, io.EOF):
		sess.logger.Debug().Msg("connection closed by peer")
	case errors.As(err, &syntaxErr), errors.Is(err, stream.ErrTooLarge):
		sess.logger.Warn().Err(err).Msg("malformed request")

		response := sess.assembler.AssembleError(proto.HTTP11, s.router.OnError(status.ErrBadRequest))
		if err = sess.serializer.Write(response, sess.client); err != nil {
			sess.logger.Debug().Err(err).Msg("write response")
		}
	case errors.Is(err, stream.ErrUnexpectedEOF):
		sess.logger.Warn().Err(err).Msg("connection closed mid-request")
	case errors.Is(err, stream.ErrIdle):
		sess.logger.Debug().Msg("closing idle connection")
	default:
		sess.logger.Warn().Err(err).Msg("read request")
	}

	return false
}
