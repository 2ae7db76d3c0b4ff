// Package main implements the entry point for the event manager gateway.
// The gateway exposes a synchronous HTTP API for the orders resource and
// brokers each call over NATS request/reply to the backend services.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/migue1angel/event-manager-gateway/config"
	"github.com/migue1angel/event-manager-gateway/gateway"
	gatewayhttp "github.com/migue1angel/event-manager-gateway/gateway/http"
	"github.com/migue1angel/event-manager-gateway/metric"
	"github.com/migue1angel/event-manager-gateway/natsclient"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "event-manager-gateway"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	// Required environment: PORT and NAT_SERVERS. Boot fails fast when
	// either is absent or malformed.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()

	metricsRegistry := metric.NewMetricsRegistry()
	metricsServer := metric.NewServer(cfg.MetricsPort, "", metricsRegistry)

	natsClient, err := createNATSClient(cfg, logger, metricsRegistry)
	if err != nil {
		return err
	}

	if err := connectToNATS(ctx, natsClient); err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = natsClient.Close(closeCtx)
	}()

	gw, err := gatewayhttp.NewGateway(
		gateway.Config{Port: cfg.Port, EnableCORS: cliCfg.EnableCORS},
		natsClient,
		gatewayhttp.WithMetrics(metricsRegistry),
		gatewayhttp.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}

	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}

	return runWithSignalHandling(ctx, gw, metricsServer, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting event manager gateway",
		"version", Version,
		"build_time", BuildTime)

	return cliCfg, logger, false, nil
}

// createNATSClient builds the broker client with the configured timeout
func createNATSClient(cfg *config.Config, logger *slog.Logger, registry *metric.MetricsRegistry) (*natsclient.Client, error) {
	natsClient, err := natsclient.NewClient(cfg.NATSURL(),
		natsclient.WithName(appName),
		natsclient.WithRequestTimeout(cfg.RequestTimeout),
		natsclient.WithMetrics(registry),
		natsclient.WithLogger(slogAdapter{logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}
	return natsClient, nil
}

// connectToNATS establishes the NATS connection and waits for it to be ready
func connectToNATS(ctx context.Context, natsClient *natsclient.Client) error {
	slog.Info("Connecting to NATS")
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := natsClient.WaitForConnection(connCtx); err != nil {
		return fmt.Errorf("NATS connection timeout: %w", err)
	}

	return nil
}

// runWithSignalHandling blocks until shutdown and stops both servers
func runWithSignalHandling(
	ctx context.Context,
	gw *gatewayhttp.Gateway,
	metricsServer *metric.Server,
	shutdownTimeout time.Duration,
) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	slog.Info("Gateway started successfully")

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop the inbound surface first so in-flight requests drain before
	// the broker connection goes away.
	if err := gw.Stop(shutdownCtx); err != nil {
		slog.Error("Error stopping gateway", "error", err)
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := metricsServer.Stop(shutdownCtx); err != nil {
		slog.Error("Error stopping metrics server", "error", err)
	}

	slog.Info("Gateway shutdown complete")
	return nil
}
