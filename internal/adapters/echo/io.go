package echo

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/wsession/internal/core"
)

func (ctl *EchoWSController) writePump(ctx context.Context, c *wsEchoConn) {
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "echo").Str("sid", string(c.id)).Msg("writePump ctx done")
			return
		case f, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "echo").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(int(f.Type), f.Payload); err != nil {
				log.Error().Err(err).Str("module", "echo").Str("sid", string(c.id)).Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *EchoWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *wsEchoConn) {
	defer func() {
		log.Info().Str("module", "echo").Str("sid", string(c.id)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.opts.Limiter.Forget(c.id)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			mt, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "echo").Str("sid", string(c.id)).Msg("readPump read end")
				return
			}
			ctl.handleFrame(c, core.Frame{Type: core.MessageType(mt), Payload: data})
		}
	}
}

func (ctl *EchoWSController) handleFrame(c *wsEchoConn, in core.Frame) {
	if !ctl.opts.Limiter.Allow(c.id) {
		log.Warn().Str("module", "echo").Str("sid", string(c.id)).Msg("rate limited, frame dropped")
		return
	}
	log.Debug().Str("module", "echo").Str("sid", string(c.id)).Str("type", in.Type.String()).Int("len", len(in.Payload)).Msg("frame received")

	out := in
	if ctl.opts.Reply != "" {
		out = core.Frame{Type: core.TextMessage, Payload: []byte(ctl.opts.Reply)}
	}
	if err := c.TrySend(out); err != nil {
		log.Warn().Err(err).Str("module", "echo").Str("sid", string(c.id)).Msg("reply dropped")
	}
}
