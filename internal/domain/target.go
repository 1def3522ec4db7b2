package domain

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	MinPort = 1
	MaxPort = 65535
)

var (
	ErrEmptyHost   = errors.New("host empty")
	ErrInvalidPort = errors.New("port out of range")
	ErrEmptyPath   = errors.New("path empty")
)

// Target is the remote end of a client session.
type Target struct {
	Host   string
	Port   int
	Path   string
	Secure bool
}

func (t Target) Validate() error {
	if strings.TrimSpace(t.Host) == "" {
		return ErrEmptyHost
	}
	if t.Port < MinPort || t.Port > MaxPort {
		return ErrInvalidPort
	}
	if t.Path == "" {
		return ErrEmptyPath
	}
	return nil
}

// Addr returns host:port, bracketing IPv6 literals.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// URL builds the ws:// (or wss://) URL for the handshake.
// A path without a leading slash gets one.
func (t Target) URL() string {
	scheme := "ws"
	if t.Secure {
		scheme = "wss"
	}
	path := t.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: scheme, Host: t.Addr()}
	// Path may carry a query string, e.g. "/some-uri?room=a".
	if p, q, ok := strings.Cut(path, "?"); ok {
		u.Path = p
		u.RawQuery = q
	} else {
		u.Path = path
	}
	return u.String()
}
