package core

import (
	"context"
	"errors"

	"github.com/dkeye/wsession/internal/domain"
)

var (
	ErrSessionClosed     = errors.New("session closed")
	ErrHandlerRegistered = errors.New("handler already registered")
	ErrNilHandler        = errors.New("nil handler")
)

// FrameHandler is invoked once per inbound frame, in wire order,
// never concurrently for the same session.
type FrameHandler func(Frame)

// CloseHandler is invoked exactly once when the session ends.
// err is nil when the session was closed locally.
type CloseHandler func(err error)

// Session is one client-initiated WebSocket connection.
// The session owns its transport; Close releases it exactly once.
type Session interface {
	ID() domain.SessionID
	Target() domain.Target

	// OnFrame registers the single frame handler and starts delivery.
	OnFrame(FrameHandler) error
	OnClose(CloseHandler) error

	SendText(payload string) error
	SendBinary(payload []byte) error

	// Close is idempotent; calls after the first return nil.
	Close() error
	Done() <-chan struct{}
	// Err reports why the session ended. Nil while open or after a local Close.
	Err() error
}

// Connector opens sessions. Failures are reported, never retried.
type Connector interface {
	Connect(ctx context.Context, target domain.Target) (Session, error)
}
