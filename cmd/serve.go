/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/smarttranslate/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API: translation, summaries, glossaries, uploads,
speech and per-user history.

The listen address comes from server.addr (or PORT when set by the platform).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		svc, err := rt.services(ctx, *cfg)
		if err != nil {
			return err
		}

		server := &http.Server{
			Addr: cfg.Server.Addr,
			Handler: httpapi.NewServer(svc, httpapi.Options{
				MaxUploadBytes: cfg.Upload.MaxBytes,
				Logger:         logger,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		serveErr := make(chan error, 1)
		go func() {
			logger.Infow("server listening", "addr", cfg.Server.Addr,
				"provider", cfg.Translate.Provider, "store", cfg.Store.Backend)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case err := <-serveErr:
			return err
		case <-shutdown:
			logger.Infow("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("graceful shutdown failed", "error", err)
			return server.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	bindFlag(serveCmd, "server.addr", "addr")
}
