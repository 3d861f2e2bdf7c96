package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/quotafence/quotafence/internal/core/throttle"
	"github.com/quotafence/quotafence/internal/observability"
	"github.com/quotafence/quotafence/internal/server"
	"github.com/quotafence/quotafence/internal/server/handlers"
)

var (
	servePort int
	serveHost string
)

// storeHealthChecker pings the counter store.
type storeHealthChecker struct {
	ping func(ctx context.Context) error
}

func (c storeHealthChecker) CheckHealth(ctx context.Context) error {
	return c.ping(ctx)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP facade",
	Long: `Start the HTTP facade with graceful shutdown support.

SIGINT or SIGTERM triggers a graceful shutdown bounded by
server.shutdown_timeout. Editing the config file live-reloads the
outbound throttle table without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if serveHost != "" {
			cfg.Server.Host = serveHost
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		observability.InitServerLogger("quotafence", cfg.Logging.Level)
		logger := observability.ServerLogger
		defer logger.Sync() // nolint:errcheck // stderr sync is best-effort

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		kvStore, closeStore, err := openKV(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore() // nolint:errcheck // best-effort cleanup

		thr := throttle.New(cfg.Throttle.CoreConfigs())
		tracker := buildTracker(cfg, kvStore)
		fetcher := buildFetcher(cfg, thr)

		// Live-reload the throttle table when the config file changes.
		viper.OnConfigChange(func(event fsnotify.Event) {
			reloaded, err := loadConfig()
			if err != nil {
				logger.Warn("config reload failed", zap.String("file", event.Name), zap.Error(err))
				return
			}
			thr.SetConfigs(reloaded.Throttle.CoreConfigs())
			logger.Info("throttle table reloaded", zap.String("file", event.Name))
		})
		viper.WatchConfig()

		srv := server.New(cfg.Server, logger, handlers.Deps{
			Tracker:   tracker,
			Fetcher:   fetcher,
			Version:   versionInfo.Version,
			Commit:    versionInfo.Commit,
			BuildDate: versionInfo.BuildDate,
			HealthCheckers: map[string]handlers.HealthChecker{
				"store": storeHealthChecker{ping: func(ctx context.Context) error {
					_, _, err := kvStore.Get(ctx, "healthcheck")
					return err
				}},
			},
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		logger.Info("server started",
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override server port")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "override server host")
}
