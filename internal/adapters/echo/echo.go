// Package echo is the server end used to exercise client sessions:
// it answers every inbound frame with either a fixed reply or the frame itself.
package echo

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wsession/internal/core"
	"github.com/dkeye/wsession/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Options struct {
	// Reply is sent as a text frame for every inbound frame; empty echoes.
	Reply        string
	ReadLimit    int64
	WriteTimeout time.Duration
	Limiter      *FrameRateLimiter
}

type EchoWSController struct {
	opts Options
}

func NewEchoWSController(opts Options) *EchoWSController {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &EchoWSController{opts: opts}
}

type wsEchoConn struct {
	id   domain.SessionID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsEchoConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsEchoConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *EchoWSController) HandleEcho(ctx context.Context, c *gin.Context) {
	sid := domain.NewSessionID()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "echo").Msg("ws upgrade")
		return
	}
	if ctl.opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.opts.ReadLimit)
	}
	log.Info().Str("module", "echo").Str("sid", string(sid)).Str("remote", c.Request.RemoteAddr).Msg("new WS connection")

	conn := &wsEchoConn{
		id:   sid,
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}
