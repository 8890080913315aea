package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/graft/pkg/adapters/http"
	redisAdapter "github.com/aretw0/graft/pkg/adapters/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP node host",
	Long: `Starts a graft host that builds, attaches, detaches and releases nodes on
request, exposing a JSON API and Prometheus metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithPrometheus(reg),
		}
		if journal := openJournal(cmd, logger); journal != nil {
			defer journal.Close()
			opts = append(opts, httpAdapter.WithJournal(journal))
		}

		host, err := httpAdapter.NewServer("http", opts...)
		if err != nil {
			return fmt.Errorf("failed to create host: %w", err)
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           host.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting graft server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("failed to close server: %w", err)
				}
			}
			logger.Info("graft server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	addJournalFlags(serveCmd)
}

func addJournalFlags(cmd *cobra.Command) {
	cmd.Flags().String("redis", "", "Redis address for the event journal (disabled when empty)")
	cmd.Flags().String("stream", "graft:events", "Redis stream holding node events")
	cmd.Flags().Int64("max-len", 10000, "Cap on journal length, trimmed exactly on every append (0 for unbounded)")
}

// openJournal returns the Redis journal selected by the journal flags, or
// nil when --redis is empty.
func openJournal(cmd *cobra.Command, logger *slog.Logger) *redisAdapter.Journal {
	redisAddr, _ := cmd.Flags().GetString("redis")
	if redisAddr == "" {
		return nil
	}
	stream, _ := cmd.Flags().GetString("stream")
	maxLen, _ := cmd.Flags().GetInt64("max-len")

	journal := redisAdapter.New(redisAddr, os.Getenv("GRAFT_REDIS_PASSWORD"), 0,
		redisAdapter.WithStream(stream),
		redisAdapter.WithMaxLen(maxLen),
		redisAdapter.WithLogger(logger),
	)
	logger.Info("journaling node events", "redis", redisAddr, "stream", stream)
	return journal
}
