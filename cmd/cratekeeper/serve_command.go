package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cratekeeper/internal/logging"
	"cratekeeper/internal/manager"
	"cratekeeper/internal/registry"
	"cratekeeper/internal/server"
	"cratekeeper/internal/services/plex"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the collection engine HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			reg, err := registry.Open(cfg.RegistryPath())
			if err != nil {
				return fmt.Errorf("open registry: %w", err)
			}
			defer reg.Close()

			source := manager.NewFileSource()
			mgr := manager.New(source, source, logger, manager.WithRecorder(reg))

			var opts []server.Option
			if plex.Configured(cfg) {
				client, err := plex.NewClient(cfg)
				if err != nil {
					return fmt.Errorf("configure plex client: %w", err)
				}
				opts = append(opts, server.WithTrackLister(client))
				logger.Info("external library reconciliation enabled",
					logging.String("library", cfg.Plex.MusicLibrary))
			}

			srv := server.New(cfg, mgr, reg, logger, opts...)
			if err := srv.Start(signalCtx); err != nil {
				return err
			}
			defer srv.Stop()

			<-signalCtx.Done()
			logger.Info("shutting down")
			return nil
		},
	}
}
