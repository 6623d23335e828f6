// Command emberforge runs a standalone server process: it loads a TOML
// config (writing out defaults on first run), starts listening, and drives
// an interactive console until told to stop.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/emberforge/core/log"
	"github.com/emberforge/core/server"
	"github.com/emberforge/core/server/console"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the server's TOML configuration file")
	debug := flag.Bool("debug", false, "enable debug-level logging")
	jsonLogs := flag.Bool("json-logs", false, "emit logs as JSON instead of text")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := log.New(log.Options{Level: level, JSON: *jsonLogs})
	slog.SetDefault(logger)

	uc, err := server.LoadUserConfig(*configPath)
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}
	conf, err := uc.Config(logger)
	if err != nil {
		logger.Error("build config", "err", err)
		os.Exit(1)
	}

	srv, err := conf.New()
	if err != nil {
		logger.Error("create server", "err", err)
		os.Exit(1)
	}
	if err := srv.Listen(); err != nil {
		logger.Error("listen", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go console.New(srv, logger).Run(ctx)

	logger.Info("server listening", "address", conf.Address)
	if err := srv.Serve(ctx); err != nil {
		logger.Error("serve", "err", err)
		os.Exit(1)
	}
}
