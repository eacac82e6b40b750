package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	deliveryhttp "estate-metrics/internal/delivery/http"
	"estate-metrics/pkg/logger"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API server and the enrichment scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer() error {
	dep, err := initDependencies()
	if err != nil {
		return err
	}
	defer dep.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dep.Service.Scheduler.Start(); err != nil {
		return err
	}
	defer dep.Service.Scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	deliveryhttp.SetupRoutes(e, dep.Log, dep.Service)

	go func() {
		addr := fmt.Sprintf(":%d", dep.Cfg.API.Port)
		dep.Log.Info("HTTP server starting", logger.StringField("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			dep.Log.Error("HTTP server stopped", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()
	dep.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
