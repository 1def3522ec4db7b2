package ws_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/wsession/internal/adapters/ws"
	"github.com/dkeye/wsession/internal/core"
	"github.com/dkeye/wsession/internal/domain"
)

// targetOf converts an httptest server URL into a session target.
func targetOf(t *testing.T, rawURL, path string) domain.Target {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return domain.Target{Host: host, Port: port, Path: path}
}

// freePort returns a port nothing listens on.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func echoServer(t *testing.T, received chan<- core.Frame) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/some-uri" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if received != nil {
				received <- core.Frame{Type: core.MessageType(mt), Payload: data}
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnectorRoundTrip(t *testing.T) {
	received := make(chan core.Frame, 4)
	srv := echoServer(t, received)

	c := ws.NewConnector(ws.Options{HandshakeTimeout: time.Second})
	s, err := c.Connect(context.Background(), targetOf(t, srv.URL, "/some-uri"))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "/some-uri", s.Target().Path)
	assert.NotEmpty(t, s.ID())

	echoed := make(chan core.Frame, 1)
	require.NoError(t, s.OnFrame(func(f core.Frame) { echoed <- f }))
	require.NoError(t, s.SendText("Hello world"))

	select {
	case f := <-received:
		assert.Equal(t, core.TextMessage, f.Type)
		assert.Equal(t, "Hello world", f.Text())
	case <-time.After(2 * time.Second):
		t.Fatal("server got nothing")
	}
	select {
	case f := <-echoed:
		assert.Equal(t, "Hello world", f.Text())
	case <-time.After(2 * time.Second):
		t.Fatal("no echo")
	}

	require.NoError(t, s.Close())
	waitDone(t, s)
	assert.NoError(t, s.Err())
}

func TestConnectorPathWithoutSlash(t *testing.T) {
	srv := echoServer(t, nil)

	c := ws.NewConnector(ws.Options{})
	s, err := c.Connect(context.Background(), targetOf(t, srv.URL, "some-uri"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestConnectUnreachable(t *testing.T) {
	c := ws.NewConnector(ws.Options{HandshakeTimeout: time.Second})
	target := domain.Target{Host: "127.0.0.1", Port: freePort(t), Path: "/some-uri"}

	s, err := c.Connect(context.Background(), target)
	assert.Nil(t, s)
	var cerr *ws.ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, target.Addr(), cerr.Addr)
	assert.Zero(t, cerr.Status)
}

func TestConnectInvalidTarget(t *testing.T) {
	c := ws.NewConnector(ws.Options{})

	_, err := c.Connect(context.Background(), domain.Target{Host: "localhost", Port: 0, Path: "/x"})
	var cerr *ws.ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, domain.ErrInvalidPort)

	_, err = c.Connect(context.Background(), domain.Target{Host: "localhost", Port: 8080})
	assert.ErrorIs(t, err, domain.ErrEmptyPath)
}

func TestConnectBadHandshake(t *testing.T) {
	srv := echoServer(t, nil)

	c := ws.NewConnector(ws.Options{})
	_, err := c.Connect(context.Background(), targetOf(t, srv.URL, "/elsewhere"))
	var cerr *ws.ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, http.StatusNotFound, cerr.Status)
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
}

func TestConnectCanceled(t *testing.T) {
	srv := echoServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := ws.NewConnector(ws.Options{})
	_, err := c.Connect(ctx, targetOf(t, srv.URL, "/some-uri"))
	var cerr *ws.ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Zero(t, cerr.Status)
}
