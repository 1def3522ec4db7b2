package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dkeye/wsession/internal/core"
	"github.com/dkeye/wsession/internal/domain"
)

// Session is a transport endpoint (WebSocket) owned by one client.
// It implements core.Session.
type Session struct {
	id           domain.SessionID
	target       domain.Target
	conn         WSConn
	writeTimeout time.Duration
	log          zerolog.Logger

	// gorilla allows one concurrent writer.
	writeMu sync.Mutex

	mu      sync.RWMutex
	closed  bool
	err     error
	onFrame core.FrameHandler
	onClose core.CloseHandler

	once sync.Once
	done chan struct{}
}

var _ core.Session = (*Session)(nil)

// NewSession wraps an already-open connection. The session takes ownership of conn.
func NewSession(conn WSConn, target domain.Target, opts Options) *Session {
	opts = opts.withDefaults()
	if opts.ReadLimit > 0 {
		conn.SetReadLimit(opts.ReadLimit)
	}
	id := domain.NewSessionID()
	return &Session{
		id:           id,
		target:       target,
		conn:         conn,
		writeTimeout: opts.WriteTimeout,
		log:          opts.Logger.With().Str("module", "adapters.ws").Str("sid", string(id)).Logger(),
		done:         make(chan struct{}),
	}
}

func (s *Session) ID() domain.SessionID { return s.id }
func (s *Session) Target() domain.Target { return s.target }
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// OnFrame registers the frame handler and starts the read pump.
// Frames that arrived earlier wait in the socket until then.
func (s *Session) OnFrame(h core.FrameHandler) error {
	if h == nil {
		return core.ErrNilHandler
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrSessionClosed
	}
	if s.onFrame != nil {
		s.mu.Unlock()
		return core.ErrHandlerRegistered
	}
	s.onFrame = h
	s.mu.Unlock()

	go s.readPump(h)
	return nil
}

// OnClose registers the close handler. If the session already ended
// the handler runs immediately on the caller's goroutine.
func (s *Session) OnClose(h core.CloseHandler) error {
	if h == nil {
		return core.ErrNilHandler
	}
	s.mu.Lock()
	if s.onClose != nil {
		s.mu.Unlock()
		return core.ErrHandlerRegistered
	}
	s.onClose = h
	if s.closed {
		err := s.err
		s.mu.Unlock()
		h(err)
		return nil
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) SendText(payload string) error {
	return s.write(websocket.TextMessage, []byte(payload))
}

func (s *Session) SendBinary(payload []byte) error {
	return s.write(websocket.BinaryMessage, payload)
}

func (s *Session) write(mt int, data []byte) error {
	if s.isClosed() {
		return &WriteError{Err: core.ErrSessionClosed}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return s.failWrite(err)
	}
	if err := s.conn.WriteMessage(mt, data); err != nil {
		return s.failWrite(err)
	}
	s.log.Debug().Int("type", mt).Int("len", len(data)).Msg("frame sent")
	return nil
}

// failWrite terminates the session; a write racing a local Close
// reports ErrSessionClosed instead of the socket error.
func (s *Session) failWrite(err error) error {
	if s.isClosed() {
		return &WriteError{Err: core.ErrSessionClosed}
	}
	werr := &WriteError{Err: err}
	s.log.Error().Err(err).Msg("write failed")
	s.terminate(werr, false)
	return werr
}

// Close sends a close frame and releases the connection.
// Safe from the frame handler and from several goroutines.
func (s *Session) Close() error {
	return s.terminate(nil, true)
}

// readPump delivers frames to h, one at a time, until the transport ends.
func (s *Session) readPump(h core.FrameHandler) {
	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			s.terminate(readCause(err), false)
			return
		}
		if s.isClosed() {
			return
		}
		h(core.Frame{Type: core.MessageType(mt), Payload: data})
	}
}

// readCause maps a read error to the session's terminal cause.
// A normal close by the peer is not a failure.
func readCause(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		return nil
	}
	return err
}

func (s *Session) terminate(cause error, graceful bool) error {
	var (
		closeErr error
		onClose  core.CloseHandler
		fired    bool
	)
	s.once.Do(func() {
		fired = true
		s.mu.Lock()
		s.closed = true
		s.err = cause
		onClose = s.onClose
		s.mu.Unlock()

		if graceful {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeTimeout)); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				s.log.Debug().Err(err).Msg("close frame not sent")
			}
		}
		closeErr = s.conn.Close()
		close(s.done)

		if cause != nil {
			s.log.Warn().Err(cause).Msg("session terminated")
		} else {
			s.log.Info().Msg("session closed")
		}
	})
	// Outside once so the handler may call Close.
	if fired && onClose != nil {
		onClose(cause)
	}
	return closeErr
}
