package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-gates/internal/config"
	"parking-gates/internal/logging"
	"parking-gates/internal/parking"
	"parking-gates/internal/server"
)

var (
	mode       = flag.String("mode", "cli", "Mode to run: cli, server, both, or demo")
	configPath = flag.String("config", "", "Optional .env file with configuration")
	firstStay  = flag.Duration("first-stay", 8*time.Second, "Demo: how long the first vehicle stays")
	secondStay = flag.Duration("second-stay", 2*time.Second, "Demo: how long the second vehicle stays")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, cfg.TelemetryConfig())
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	if err := logging.Init(cfg.LoggingOptions()); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	layout, err := cfg.Layout()
	if err != nil {
		log.Fatalf("Invalid parking layout: %v", err)
	}

	facility, err := parking.NewInstrumentedFacility(layout, telemetryProvider)
	if err != nil {
		log.Fatalf("Failed to create facility: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, facility, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, facility, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, facility, telemetryProvider, sigChan)
	case "demo":
		runDemo(ctx, cancel, facility, sigChan)
	default:
		log.Fatalf("Invalid mode: %s. Must be cli, server, both, or demo", *mode)
	}

	shutdownTelemetry(telemetryProvider)
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadWithPath(*configPath)
	}
	return config.Load()
}

func runCLI(ctx context.Context, cancel context.CancelFunc, facility *parking.InstrumentedFacility, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	shell := parking.NewShell(facility, telemetryProvider, os.Stdin, os.Stdout)
	shell.Run(ctx)
}

func runDemo(ctx context.Context, cancel context.CancelFunc, facility *parking.InstrumentedFacility, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		cancel()
	}()

	opts := parking.DefaultDemoOptions()
	opts.FirstStay = *firstStay
	opts.SecondStay = *secondStay

	if _, err := parking.RunDemo(ctx, facility, os.Stdout, opts); err != nil {
		logging.Error(ctx, "demo failed", "error", err)
	}
}

func newServer(cfg *config.Config, facility *parking.InstrumentedFacility) *server.Server {
	return server.NewServer(server.Options{
		Port:         cfg.Server.Port,
		ServiceName:  cfg.OTel.ServiceName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, facility)
}

func shutdownOnSignal(cancel context.CancelFunc, cfg *config.Config, srv *server.Server, sigChan chan os.Signal) {
	<-sigChan
	logging.Info(context.Background(), "received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx, "server shutdown error", "error", err)
	}

	cancel()
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, facility *parking.InstrumentedFacility, sigChan chan os.Signal) {
	srv := newServer(cfg, facility)

	go shutdownOnSignal(cancel, cfg, srv, sigChan)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error(ctx, "server error", "error", err)
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, facility *parking.InstrumentedFacility, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := newServer(cfg, facility)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		shell := parking.NewShell(facility, telemetryProvider, os.Stdin, os.Stdout)
		shell.Run(ctx)
		close(cliDone)
	}()

	go shutdownOnSignal(cancel, cfg, srv, sigChan)

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "server error", "error", err)
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(context.Background(), "context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx, "server shutdown error", "error", err)
	}
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	logging.Info(context.Background(), "shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}
