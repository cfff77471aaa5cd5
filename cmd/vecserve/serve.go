// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vecserve-dev/vecserve/internal/server"
	"github.com/vecserve-dev/vecserve/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the vecserve server",
		Long:  "Bind the configured address and serve store/search requests until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	setupLogging(viper.GetBool("verbose"))

	dispatcher := server.NewDispatcher(store.NewVectorStore(), cfg.Search.DefaultTopK)
	srv, err := server.New(server.Config{
		Addr:         cfg.Addr(),
		PollInterval: cfg.Server.PollInterval,
	}, dispatcher)
	if err != nil {
		return err
	}

	// Interrupt and termination signals cancel the accept loop; a connection
	// already being served finishes first.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
