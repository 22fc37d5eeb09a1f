package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"credit-intelligence/internal/delivery/http"
	"credit-intelligence/pkg/middleware"

	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the credit-intelligence API server",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {

	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	services := appDep.Services()

	appDep.echo.Use(echoMiddleware.Recover())
	appDep.echo.Use(echoMiddleware.RequestID())
	appDep.echo.Use(middleware.NewRequestLogger(appDep.log))
	appDep.echo.Use(appDep.metrics.EchoMiddleware())
	if !appDep.cfg.API.RateLimitDisabled {
		appDep.echo.Use(middleware.NewRateLimiterMiddleware(appDep.cfg.API.RateLimitPerSec, appDep.cfg.API.RateLimitBurst))
	}
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services, appDep.metrics)

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
