package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-ansible-demo/status-page/cmd/status_page/server"
	"github.com/terra-ansible-demo/status-page/internal/config"
	"github.com/terra-ansible-demo/status-page/internal/logging"
	"github.com/terra-ansible-demo/status-page/internal/metrics"
	"github.com/terra-ansible-demo/status-page/internal/tracing"
	"github.com/terra-ansible-demo/status-page/internal/validation"
)

var (
	// Version can be set during the compilation
	Version string = "0.0.1"
	// Build is set during the compilation
	Build string
	// BuildDate is set during the compilation
	BuildDate string
)

func main() {
	logger, logShutdown, err := logging.NewLogger()
	if err != nil {
		// we do this as no point trying to continue
		startUpFailed(nil, err, "Failed to create service logger", logging.FallbackLogger())
	}

	serviceConfig, err := config.LoadConfig(logger, Version, Build, BuildDate)
	if err != nil {
		// we do this as no point trying to continue
		startUpFailed(nil, err, "Failed to create service config", logger)
	}

	// set up the validator
	validate, err := validation.NewValidator()
	if err != nil {
		// we do this as no point trying to continue
		startUpFailed(serviceConfig, err, "Failed to create validator", logger)
	}
	if err := validation.ValidateConfig(validate, serviceConfig); err != nil {
		startUpFailed(serviceConfig, err, "Invalid service config", logger)
	}

	// the level from the configuration replaces the LOG_LEVEL used to bootstrap the logger
	if err := logging.SetLevel(serviceConfig.Logging.Level); err != nil {
		startUpFailed(serviceConfig, err, "Failed to set the log level", logger)
	}

	tracingShutdown, err := tracing.Setup(context.Background(), serviceConfig.OTEL, Version, logger)
	if err != nil {
		startUpFailed(serviceConfig, err, "Failed to set up tracing", logger)
	}

	environment := config.NewEnvironment(serviceConfig)
	metrics.SetBuildInfo(Version, Build, BuildDate, environment.ProfilesString())

	srv, err := server.NewServer(logger, serviceConfig, environment)
	if err != nil {
		// we do this as no point trying to continue
		startUpFailed(serviceConfig, err, "Failed to create server", logger)
	}

	// log the start up details
	logger.Info("Server starting",
		"server_port", srv.GetPort(),
		"version", serviceConfig.Service.Version,
		"build", serviceConfig.Service.Build,
		"build_date", serviceConfig.Service.BuildDate,
		"profiles", environment.ProfilesString(),
		"local", serviceConfig.Service.LocalMode,
		"tracing", serviceConfig.OTEL.Enabled,
		"log_level", logging.GetLevel(),
	)

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			// we do this as no point trying to continue
			if errors.Is(err, &server.ServerClosedError{}) {
				logger.Info("Server closed gracefully")
				return
			}
			startUpFailed(serviceConfig, err, "Server failed to start", logger)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a context with timeout for graceful shutdown
	waitForShutdown := 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), waitForShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err.Error(), "timeout", waitForShutdown)
	} else {
		logger.Info("Server shutdown gracefully")
	}

	// flush the spans before the logger so that exporter errors are still logged
	if err := tracingShutdown(ctx); err != nil {
		logger.Error("Failed to flush the traces", "error", err.Error())
	}
	_ = logShutdown() // ignore the error
}

func startUpFailed(conf *config.Config, err error, msg string, logger *slog.Logger) {
	termErr := server.SetTerminationMessage(server.GetTerminationFile(conf, logger), fmt.Sprintf("%s: %s", msg, err.Error()), logger)
	if termErr != nil {
		logger.Error("Failed to set termination message", "message", msg, "error", termErr.Error())
		log.Println(termErr.Error())
	}
	log.Fatal(err)
}
