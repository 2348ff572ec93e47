package http1

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	stdhttp "net/http"
	"testing"

	"github.com/indigo-web/minihttp/http"
	"github.com/indigo-web/minihttp/http/proto"
	"github.com/indigo-web/minihttp/http/status"
	"github.com/stretchr/testify/require"
)

type accumulativeWriter struct {
	Data   []byte
	Writes int
}

func (a *accumulativeWriter) Write(b []byte) (int, error) {
	a.Writes++
	a.Data = append(a.Data, b...)
	return len(b), nil
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestSerializer_Write(t *testing.T) {
	stdreq, err := stdhttp.NewRequest(stdhttp.MethodGet, "/", nil)
	require.NoError(t, err)

	t.Run("status only", func(t *testing.T) {
		writer := new(accumulativeWriter)
		serializer := NewSerializer(make([]byte, 0, 64))
		response := http.NewResponse(proto.HTTP11).WithCode(status.OK)

		require.NoError(t, serializer.Write(response, writer))
		require.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", string(writer.Data))
		require.Equal(t, 1, writer.Writes)
	})

	t.Run("headers and body", func(t *testing.T) {
		writer := new(accumulativeWriter)
		serializer := NewSerializer(nil)
		response := http.NewResponse(proto.HTTP11).
			WithCode(status.OK).
			Header("Content-Type", "text/plain").
			String("abc").
			ContentLength(3)

		require.NoError(t, serializer.Write(response, writer))
		require.Equal(
			t,
			"HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nabc",
			string(writer.Data),
		)

		resp, err := stdhttp.ReadResponse(bufio.NewReader(bytes.NewReader(writer.Data)), stdreq)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, "abc", string(body))
	})

	t.Run("buffer is reused", func(t *testing.T) {
		serializer := NewSerializer(make([]byte, 0, 128))
		first, second := new(accumulativeWriter), new(accumulativeWriter)

		require.NoError(t, serializer.Write(http.NewResponse(proto.HTTP11).String("first body"), first))
		require.NoError(t, serializer.Write(http.NewResponse(proto.HTTP10).WithCode(status.Created), second))
		require.Equal(t, "HTTP/1.1 404 Not Found\r\n\r\nfirst body", string(first.Data))
		require.Equal(t, "HTTP/1.0 201 Created\r\n\r\n", string(second.Data))
	})

	t.Run("write error", func(t *testing.T) {
		serializer := NewSerializer(nil)
		err := serializer.Write(http.NewResponse(proto.HTTP11), brokenWriter{})
		require.True(t, errors.Is(err, io.ErrClosedPipe))
	})
}

func TestAppendResponse(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		response := http.NewResponse(proto.HTTP11).WithCode(status.Code(599))
		require.Equal(t, "HTTP/1.1 599 \r\n\r\n", string(AppendResponse(nil, response)))
	})

	t.Run("multi token header", func(t *testing.T) {
		response := http.NewResponse(proto.HTTP11).WithCode(status.Conflict)
		response.Headers = append(response.Headers,
			http.NewHeader("Vary", "Accept-Encoding", "User-Agent"),
			http.NewHeader("X-Empty"),
		)

		require.Equal(
			t,
			"HTTP/1.1 409 Conflict\r\nVary: Accept-Encoding User-Agent\r\nX-Empty:\r\n\r\n",
			string(AppendResponse(nil, response)),
		)
	})

	t.Run("headers parse back", func(t *testing.T) {
		response := http.NewResponse(proto.HTTP11).
			Header("Content-Type", "application/octet-stream").
			Header("Content-Encoding", "gzip").
			ContentLength(10)

		raw := AppendResponse(nil, response)
		statusLineEnd := bytes.Index(raw, []byte("\r\n")) + 2

		headers, rest, err := ParseHeaders(complete(string(raw[statusLineEnd:])))
		require.NoError(t, err)
		require.True(t, rest.Empty())
		require.True(t, response.Headers.Equal(headers))
	})
}
