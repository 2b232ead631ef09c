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

	"pdfclean/core/db"
	"pdfclean/core/logger"
	"pdfclean/core/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload, preview and download web interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.GetLogger("serve")

		for _, dir := range []string{cfg.DataDir, cfg.UploadDir(), cfg.OutputDir()} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}

		store, err := db.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		srv, err := server.NewServer(cfg, store, newPipeline(cfg))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", "addr", srv.Addr, "auth", cfg.APIKey != "")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("cannot start server: %w", err)
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP port")
	serveCmd.Flags().String("data-dir", "./data", "directory for uploads, outputs and the database")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("data_dir", serveCmd.Flags().Lookup("data-dir"))

	rootCmd.AddCommand(serveCmd)
}
