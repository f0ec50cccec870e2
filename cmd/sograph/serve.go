package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/sograph-client/pkg/metrics"
	"github.com/Sternrassler/sograph-client/pkg/sograph"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve export and check-in over HTTP for schedulers",
		Long: `Start an HTTP server on PORT with:

  GET  /health    liveness
  GET  /ready     readiness (pings Redis when the cache is enabled)
  GET  /metrics   Prometheus metrics
  POST /export    run an export, returns {"path": "..."} or 204
  POST /checkin   run the daily check-in, returns {"code": "..."}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := &http.Server{
				Addr:              ":" + a.cfg.Server.Port,
				Handler:           newMux(a.service, a.redis),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info().Str("addr", srv.Addr).Msg("Starting sograph server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				log.Info().Msg("Shutting down sograph server")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

// operations is what the HTTP handlers call.
type operations interface {
	ParseData(ctx context.Context) (string, error)
	CollectDaily(ctx context.Context) string
}

var _ operations = (*sograph.Service)(nil)

func newMux(ops operations, redisClient *redis.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(redisClient))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /export", exportHandler(ops))
	mux.HandleFunc("POST /checkin", checkinHandler(ops))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

func exportHandler(ops operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := ops.ParseData(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Export request failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if path == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": path})
	}
}

func checkinHandler(ops operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"code": ops.CollectDaily(r.Context())})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
