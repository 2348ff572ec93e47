package minihttp

import (
	"bufio"
	"fmt"
	"io"
	"net"
	stdhttp "net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/indigo-web/minihttp/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func getConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Files.Directory = dir
	cfg.NET.AcceptLoopInterruptPeriod = 50 * time.Millisecond
	cfg.NET.ReadTimeout = 100 * time.Millisecond

	return cfg
}

func startApp(t *testing.T, cfg *config.Config) string {
	app := New("127.0.0.1:0").Tune(cfg).Logger(zerolog.Nop())
	started := make(chan struct{})
	errch := make(chan error, 1)
	app.OnStart(func() {
		close(started)
	})

	go func() {
		errch <- app.Serve()
	}()

	select {
	case <-started:
	case err := <-errch:
		require.FailNow(t, "server failed to start", err)
	}

	t.Cleanup(func() {
		app.Stop()
		require.NoError(t, <-errch)
	})

	return app.Addr().String()
}

func roundTrip(t *testing.T, conn net.Conn, reader *bufio.Reader, raw string) (*stdhttp.Response, string) {
	_, err := conn.Write([]byte(raw))
	require.NoError(t, err)

	resp, err := stdhttp.ReadResponse(reader, nil)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestApp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo"), []byte("Hello, World!"), 0o644))
	addr := startApp(t, getConfig(dir))
	url := "http://" + addr

	t.Run("raw keep-alive", func(t *testing.T) {
		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()
		reader := bufio.NewReader(conn)

		resp, body := roundTrip(t, conn, reader, "GET /echo/abc HTTP/1.1\r\n\r\n")
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, "abc", body)

		resp, body = roundTrip(t, conn, reader, "GET /user-agent HTTP/1.1\r\nUser-Agent: foo/1.0\r\n\r\n")
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, "foo/1.0", body)

		resp, body = roundTrip(t, conn, reader, "GET /files/foo HTTP/1.1\r\nConnection: close\r\n\r\n")
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
		require.Equal(t, "Hello, World!", body)

		_, err = reader.ReadByte()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("malformed", func(t *testing.T) {
		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Write([]byte("GET / HTTP/1.1 garbage\r\n\r\n"))
		require.NoError(t, err)
		response, err := io.ReadAll(conn)
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 400 Bad Request\r\n\r\n", string(response))
	})

	t.Run("stdlib client", func(t *testing.T) {
		resp, err := stdhttp.Get(url + "/echo/" + strings.Repeat("a", 100))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		require.Equal(t, 200, resp.StatusCode)
		require.True(t, resp.Uncompressed)
		require.Equal(t, strings.Repeat("a", 100), string(body))
	})

	t.Run("upload", func(t *testing.T) {
		resp, err := stdhttp.Post(url+"/files/uploaded", "text/plain", strings.NewReader("12345"))
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		require.Equal(t, 201, resp.StatusCode)

		data, err := os.ReadFile(filepath.Join(dir, "uploaded"))
		require.NoError(t, err)
		require.Equal(t, "12345", string(data))

		resp, err = stdhttp.Post(url+"/files/uploaded", "text/plain", strings.NewReader("67890"))
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		require.Equal(t, 409, resp.StatusCode)
	})

	t.Run("concurrent clients", func(t *testing.T) {
		const clients = 16

		var wg sync.WaitGroup
		errs := make(chan error, clients)

		for i := 0; i < clients; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				resp, err := stdhttp.Get(fmt.Sprintf("%s/echo/client%d", url, i))
				if err != nil {
					errs <- err
					return
				}

				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				if err != nil {
					errs <- err
					return
				}

				if want := fmt.Sprintf("client%d", i); string(body) != want {
					errs <- fmt.Errorf("want %s, got %s", want, body)
				}
			}(i)
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
	})
}

func TestApp_Stop(t *testing.T) {
	app := New("127.0.0.1:0").Tune(getConfig("")).Logger(zerolog.Nop())
	started, stopped := make(chan struct{}), make(chan struct{})
	app.OnStart(func() { close(started) }).OnStop(func() { close(stopped) })

	errch := make(chan error, 1)
	go func() {
		errch <- app.Serve()
	}()
	<-started

	conn, err := net.Dial("tcp", app.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	reader := bufio.NewReader(conn)
	resp, err := stdhttp.ReadResponse(reader, nil)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	app.Stop()
	require.NoError(t, <-errch)
	<-stopped

	_, err = reader.ReadByte()
	require.Error(t, err)
}

func TestApp_InvalidSetup(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		app := New("127.0.0.1:0").Tune(getConfig(filepath.Join(t.TempDir(), "missing"))).Logger(zerolog.Nop())
		require.Error(t, app.Serve())
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := getConfig("")
		cfg.NET.ReadBufferSize = 0
		require.Error(t, New("127.0.0.1:0").Tune(cfg).Logger(zerolog.Nop()).Serve())
	})

	t.Run("bad address", func(t *testing.T) {
		require.Error(t, New("127.0.0.1:-1").Tune(getConfig("")).Logger(zerolog.Nop()).Serve())
	})
}
