package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/wsession/internal/core"
	"github.com/dkeye/wsession/internal/domain"
)

const (
	DefaultGreeting = "Hello world"
	ReceivedPrefix  = "Received data "
)

// HelloClient greets the server once and prints whatever comes back first.
type HelloClient struct {
	Connector core.Connector
	// Out receives one "Received data <payload>" line per printed frame.
	Out     io.Writer
	Message string
}

func NewHelloClient(connector core.Connector, out io.Writer) *HelloClient {
	return &HelloClient{
		Connector: connector,
		Out:       out,
		Message:   DefaultGreeting,
	}
}

// Run connects, sends Message, prints the first inbound frame and closes.
// It returns when the session has ended or ctx is done.
func (h *HelloClient) Run(ctx context.Context, target domain.Target) error {
	sess, err := h.Connector.Connect(ctx, target)
	if err != nil {
		return err
	}
	l := log.With().Str("module", "app").Str("sid", string(sess.ID())).Logger()

	msg := h.Message
	if msg == "" {
		msg = DefaultGreeting
	}
	// The greeting goes out before the handler exists, so it always
	// precedes inbound processing.
	if err := sess.SendText(msg); err != nil {
		_ = sess.Close()
		return err
	}
	l.Debug().Str("message", msg).Msg("greeting sent")

	var printErr error
	err = sess.OnFrame(func(f core.Frame) {
		if _, err := fmt.Fprintf(h.Out, "%s%s\n", ReceivedPrefix, f.Payload); err != nil {
			printErr = fmt.Errorf("print frame: %w", err)
		}
		_ = sess.Close()
	})
	if err != nil {
		_ = sess.Close()
		return err
	}

	select {
	case <-sess.Done():
		if err := sess.Err(); err != nil {
			return err
		}
		return printErr
	case <-ctx.Done():
		l.Info().Err(ctx.Err()).Msg("interrupted")
		_ = sess.Close()
		return ctx.Err()
	}
}
