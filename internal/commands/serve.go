package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"temp_monitor/internal/config"
	"temp_monitor/internal/handlers"
	"temp_monitor/internal/logger"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/server"
	"temp_monitor/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sample probes and serve the chart API (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	sqlDB, err := openDB(log)
	if err != nil {
		return fmt.Errorf("failed to init sqlite: %w", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	logPath := config.LogPath(currentDataDir())
	repos := repository.NewRepository(sqlDB, logPath)
	if err := repos.TempLog.Ensure(); err != nil {
		return err
	}
	settings := openSettings(log, repos.TempLog.Ensure)

	bus, err := openBus()
	if err != nil {
		return err
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sinks := openSinks(ctx, log)
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Warnw("sink_close_failed", "err", err)
		}
	}()

	services := service.NewService(repos, service.Deps{
		Settings: settings,
		Bus:      bus,
		Sink:     sinks,
		Sampler: service.SamplerConfig{
			ReadTimeout: viper.GetDuration("sensors.read_timeout"),
			Parallelism: viper.GetInt("sensors.parallelism"),
		},
		Auth: service.AuthConfig{
			SigningKey: viper.GetString("auth.signing_key"),
			TokenTTL:   viper.GetDuration("auth.token_ttl"),
		},
		Log: log,
	})

	watcher, err := service.NewLogWatcher(logPath, services.Control.Rebuild, log)
	if err != nil {
		log.Warnw("log_watch_disabled", "path", logPath, "err", err)
	} else {
		go watcher.Run(ctx)
	}

	go services.Live.Run(ctx, viper.GetDuration("display.refresh"))

	if err := services.Control.Start(ctx); err != nil {
		return fmt.Errorf("start sampling: %w", err)
	}
	log.Infow("sampling_started",
		"data_dir", currentDataDir(),
		"driver", viper.GetString("sensors.driver"),
		"log_interval", settings.LogInterval(),
		"frequency_unit", settings.FrequencyUnit(),
	)

	apiHandler := handlers.NewHandler(services, log)
	srv := &server.Server{}
	serveErr := runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	return waitForShutdown(cancel, serveErr, srv, services, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine. The returned
// channel yields the error that stopped it, if any.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// waitForShutdown blocks until a termination signal or a server failure,
// then stops sampling, saves settings and drains HTTP.
func waitForShutdown(cancel context.CancelFunc, serveErr <-chan error, srv *server.Server, services *service.Service, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
	case err, ok := <-serveErr:
		if ok && err != nil {
			log.Errorw("error starting server", "err", err)
			runErr = err
		}
	}

	if err := services.Control.Stop(context.Background()); err != nil {
		log.Warnw("stop_failed", "err", err)
	}

	// stop background goroutines
	cancel()

	if err := services.Control.SaveSettings(context.Background()); err != nil {
		log.Warnw("settings_save_failed", "err", err)
	}

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
