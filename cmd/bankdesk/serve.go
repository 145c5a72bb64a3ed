package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankdesk/internal/gateway"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local console gateway",
	Long: `Starts an HTTP server on localhost exposing the console's session and
workspace operations as JSON, for use by a browser front-end or scripts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.workspace.RestoreSelection(cmd.Context()); err != nil {
			a.logger.Warn("failed to restore customer selection", "error", err)
		}

		server := gateway.NewServer(&a.cfg.Gateway, a.sessions, a.workspace, a.store, a.logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("gateway failed: %w", err)
			}
		case <-stop:
			a.logger.Info("shutting down gateway")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("gateway shutdown failed: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
