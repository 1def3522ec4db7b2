package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/dkeye/wsession/internal/adapters/ws"
	"github.com/dkeye/wsession/internal/app"
	"github.com/dkeye/wsession/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Diagnostics go to stderr; stdout carries only received data.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load("wsclient", os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		log.Error().Err(err).Msg("failed to load config")
		return 2
	}
	zerolog.SetGlobalLevel(cfg.Level())

	connector := ws.NewConnector(ws.Options{
		HandshakeTimeout: cfg.HandshakeTimeout,
		WriteTimeout:     cfg.WriteTimeout,
		ReadLimit:        cfg.ReadLimit,
	})
	client := app.NewHelloClient(connector, os.Stdout)
	client.Message = cfg.Message

	target := cfg.Target()
	log.Info().Str("url", target.URL()).Msg("connecting")
	if err := client.Run(ctx, target); err != nil {
		var cerr *ws.ConnectionError
		if errors.As(err, &cerr) {
			log.Error().Err(err).Str("addr", cerr.Addr).Msg("connection failed")
		} else {
			log.Error().Err(err).Msg("session failed")
		}
		return 1
	}
	return 0
}
