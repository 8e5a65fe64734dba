package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/paaavkata/track-metadata-enrichment/internal/config"
	"github.com/paaavkata/track-metadata-enrichment/internal/enrich"
	"github.com/paaavkata/track-metadata-enrichment/internal/logger"
	"github.com/paaavkata/track-metadata-enrichment/internal/shutdown"
	"github.com/paaavkata/track-metadata-enrichment/internal/web"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for launching enrichment runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfigFile(*configPath)
			if err != nil {
				return fail(fmt.Errorf("failed to load config: %w", err))
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			if err := cfg.Validate(); err != nil {
				return fail(fmt.Errorf("configuration error: %w", err))
			}
			return runServe(cfg)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&addr, "listen", "", "Listen address, e.g. :8080")

	return cmd
}

func runServe(cfg config.Config) error {
	log := logger.New(cfg.Verbose)
	defer log.Close()

	if cfg.LogFile != "" {
		if err := log.SetFileLog(config.ExpandHome(cfg.LogFile)); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to set up file logging: %v\n", err)
		}
	}

	sh := shutdown.New()
	sh.Listen()

	creds := loadCredentials(cfg, log)

	runs := web.NewRunManager()
	runs.StartCleanup(sh.Context())

	factory := func(dryRun bool) *enrich.Runner {
		return newRunner(cfg, creds, log, dryRun)
	}
	server := web.NewServer(sh.Context(), runs, cfg, log, factory)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting web server on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("Server error: %v", err)
		return err
	case <-sh.Context().Done():
	}

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	log.Info("Server stopped")
	return nil
}
