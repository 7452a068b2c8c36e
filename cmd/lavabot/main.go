package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/config"
	"github.com/jakobgrine/lavabot/internal/discord"
	"github.com/jakobgrine/lavabot/internal/logging"
	"github.com/jakobgrine/lavabot/internal/version"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New(logging.Options{Console: true})
		fallback.Fatal().Err(err).Msg("configuration invalid")
	}

	log := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: cfg.LogConsole,
	})
	log.Info().Str("version", version.Version).Msgf("starting %s", version.AppName)

	nodes := audio.NewRegistry(log)

	bot, err := discord.New(cfg, nodes, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building bot")
	}
	if err := bot.Start(); err != nil {
		log.Fatal().Err(err).Msg("connecting to gateway")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info().Str("signal", s.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bot.Stop(ctx)
	nodes.Shutdown(ctx)

	log.Info().Msg("bye")
}
