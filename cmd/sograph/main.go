// Command sograph exports SoGraph campaigns to XLSX and performs the daily
// check-in.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Sternrassler/sograph-client/internal/config"
	"github.com/Sternrassler/sograph-client/pkg/client"
	"github.com/Sternrassler/sograph-client/pkg/export"
	"github.com/Sternrassler/sograph-client/pkg/logging"
	"github.com/Sternrassler/sograph-client/pkg/pagination"
	"github.com/Sternrassler/sograph-client/pkg/sograph"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
	pretty   bool
	timeout  time.Duration
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sograph",
		Short:         "Export SoGraph campaigns and perform the daily check-in",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load (default: .env if present)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (or LOG_LEVEL)")
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "Human-readable log output (or LOG_PRETTY)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall operation timeout")

	root.AddCommand(newExportCmd(), newCheckinCmd(), newDailyCmd(), newServeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	service *sograph.Service
	api     *client.Client
	redis   *redis.Client
}

// Close releases the HTTP and Redis clients.
func (a *app) Close() {
	if a.api != nil {
		a.api.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// setup loads configuration, configures logging and builds the service.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(level),
		Pretty: pretty || cfg.Logging.Pretty,
		Output: os.Stderr,
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	clientCfg := client.DefaultConfig(cfg.Credentials())
	clientCfg.BaseURL = cfg.API.BaseURL
	clientCfg.Timeout = cfg.API.Timeout

	if cfg.Cache.RedisURL != "" && cfg.Cache.TTL > 0 {
		a.redis = redis.NewClient(redisOptions(cfg.Cache.RedisURL))
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Cache.RedisURL, err)
		}
		clientCfg.Redis = a.redis
		clientCfg.CacheTTL = cfg.Cache.TTL
		log.Info().Str("redis", cfg.Cache.RedisURL).Dur("ttl", cfg.Cache.TTL).Msg("Response cache enabled")
	}

	a.api, err = client.New(clientCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create sograph client: %w", err)
	}

	a.service = sograph.NewService(a.api, export.New(cfg.Export.AssetsDir), sograph.Config{
		Fetch: pagination.Config{MaxConcurrency: cfg.API.MaxConcurrency},
		Now:   time.Now,
	})

	return a, nil
}

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(raw string) *redis.Options {
	if opts, err := redis.ParseURL(raw); err == nil {
		return opts
	}
	return &redis.Options{Addr: raw}
}
