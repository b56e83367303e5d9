package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/tejusbharadwaj/turbinewatch/internal/api"
	"github.com/tejusbharadwaj/turbinewatch/internal/config"
	"github.com/tejusbharadwaj/turbinewatch/internal/fleet"
	server "github.com/tejusbharadwaj/turbinewatch/internal/grpc"
	grpcmw "github.com/tejusbharadwaj/turbinewatch/internal/grpc/middlewares"
	"github.com/tejusbharadwaj/turbinewatch/internal/orchestrator"
	"github.com/tejusbharadwaj/turbinewatch/internal/render"
	"github.com/tejusbharadwaj/turbinewatch/internal/scheduler"
	"github.com/tejusbharadwaj/turbinewatch/internal/web"
	webmw "github.com/tejusbharadwaj/turbinewatch/internal/web/middlewares"
)

// Command turbinewatch serves an operator dashboard for a wind turbine
// monitoring backend.
//
// It provides:
//   - Dashboard, turbines, alerts and analytics views as JSON
//   - Fleet health donut and analytics line charts as SVG
//   - Optimistic alert resolution
//   - Periodic refresh of the active view
//   - Prometheus metrics and gRPC health checking
//
// Usage:
//
//	turbinewatch [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
func main() {
	cfg := parseFlags()

	appConfig, err := config.Load(cfg.ConfigPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(appConfig.Logging)
	logger.WithFields(logrus.Fields{
		"http":    appConfig.Server.Addr(),
		"grpc":    appConfig.Server.GRPCAddr(),
		"backend": appConfig.Backend.URL,
	}).Info("Starting turbinewatch")

	prometheus.MustRegister(
		api.FetchTotal,
		api.FetchLatency,
		orchestrator.ViewLoads,
		orchestrator.ViewLoadLatency,
		orchestrator.AlertResolutions,
		render.CacheLookups,
		webmw.Requests,
		webmw.Latency,
		grpcmw.Requests,
		grpcmw.Latency,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize components
	client := api.NewClient(api.Options{
		BaseURL:    appConfig.Backend.URL,
		Timeout:    appConfig.Backend.Timeout(),
		RetryCount: appConfig.Backend.RetryCount,
	}, logger)

	health := server.NewHealthChecker()
	store := fleet.NewStore()
	state := orchestrator.NewState(appConfig.Dashboard.PageSize, appConfig.Dashboard.DefaultPeriodDays)
	orch := orchestrator.New(client, store, state, logger,
		orchestrator.WithConnectivityObserver(health.SetReachable),
	)

	charts, err := render.New(store, appConfig.Cache.Size)
	if err != nil {
		logger.Fatalf("Failed to create chart renderer: %v", err)
	}

	refreshTimeout := appConfig.Backend.Timeout()
	if refreshTimeout == 0 {
		refreshTimeout = 2 * time.Minute
	}
	sched := scheduler.NewScheduler(orch, appConfig.Dashboard.RefreshSchedule, refreshTimeout, logger)

	e := web.NewServer(web.NewHandler(orch, charts, logger), web.Options{
		RateLimit:      appConfig.RateLimit.RPS,
		RateLimitBurst: appConfig.RateLimit.Burst,
	}, logger)

	srv := server.SetupServer(health, server.ServerConfig{
		RateLimit:      appConfig.RateLimit.RPS,
		RateLimitBurst: appConfig.RateLimit.Burst,
	}, logger)

	lis, err := net.Listen("tcp", appConfig.Server.GRPCAddr())
	if err != nil {
		logger.Fatalf("Failed to listen: %v", err)
	}

	errChan := make(chan error, 1)

	// Load the landing view in the background
	go func() {
		if err := orch.Navigate(ctx, orchestrator.Dashboard); err != nil {
			logger.WithError(err).Warn("Initial dashboard load failed")
		}
	}()

	if err := sched.Start(); err != nil {
		logger.Fatalf("Scheduler error: %v", err)
	}

	go handleShutdown(ctx, cancel, e, srv, sched, logger)

	go func() {
		logger.WithField("addr", appConfig.Server.GRPCAddr()).Info("Starting gRPC health server")
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("grpc server error: %w", err)
		}
	}()

	go func() {
		logger.WithField("addr", appConfig.Server.Addr()).Info("Starting HTTP server")
		if err := e.Start(appConfig.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		logger.Fatalf("Service error: %v", err)
	case <-ctx.Done():
		logger.Info("Shutdown complete")
	}
}

type Config struct {
	ConfigPath string
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ConfigPath, "config", "config.yaml", "Path to config file, empty for defaults and environment only")

	flag.Parse()

	return cfg
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// Handle graceful shutdown
func handleShutdown(ctx context.Context, cancel context.CancelFunc, e *echo.Echo, srv *grpc.Server, sched *scheduler.Scheduler, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Println("Context canceled, initiating shutdown")
	case sig := <-sigChan:
		logger.Printf("Received signal %v, initiating shutdown", sig)
	}

	sched.Stop()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP shutdown incomplete")
	}

	logger.Println("Gracefully stopping server...")
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		// open health watch streams never end on their own
		srv.Stop()
	}
	logger.Println("Server stopped")

	cancel()
}
