package ws

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wsession/internal/core"
	"github.com/dkeye/wsession/internal/domain"
)

const (
	DefaultHandshakeTimeout = 45 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
)

// Options tunes sessions opened by a Connector. Zero values take defaults.
type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// ReadLimit caps inbound message size in bytes; 0 means no limit.
	ReadLimit int64
	Header    http.Header
	TLSConfig *tls.Config
	Logger    *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.Logger == nil {
		o.Logger = &log.Logger
	}
	return o
}

// Connector dials gorilla WebSocket sessions. It implements core.Connector.
type Connector struct {
	dialer *websocket.Dialer
	opts   Options
}

var _ core.Connector = (*Connector)(nil)

func NewConnector(opts Options) *Connector {
	opts = opts.withDefaults()
	return &Connector{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
			TLSClientConfig:  opts.TLSConfig,
		},
		opts: opts,
	}
}

func (c *Connector) Connect(ctx context.Context, target domain.Target) (core.Session, error) {
	s, err := c.Dial(ctx, target)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Dial is Connect returning the concrete session.
func (c *Connector) Dial(ctx context.Context, target domain.Target) (*Session, error) {
	l := c.opts.Logger.With().Str("module", "adapters.ws").Logger()

	if err := target.Validate(); err != nil {
		return nil, &ConnectionError{Addr: target.Addr(), Err: err}
	}

	url := target.URL()
	conn, resp, err := c.dialer.DialContext(ctx, url, c.opts.Header)
	if err != nil {
		cerr := &ConnectionError{Addr: target.Addr(), URL: url, Err: err}
		if resp != nil {
			cerr.Status = resp.StatusCode
			_ = resp.Body.Close()
		}
		l.Error().Err(err).Str("url", url).Int("status", cerr.Status).Msg("connect failed")
		return nil, cerr
	}

	s := NewSession(conn, target, c.opts)
	l.Info().Str("sid", string(s.ID())).Str("url", url).Msg("session open")
	return s, nil
}
