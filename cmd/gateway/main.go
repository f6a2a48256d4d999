package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contracthub/internal/gateway/app"

	"github.com/charmbracelet/log"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatal("failed to initialize app", "err", err)
	}

	go func() {
		if err := a.Start(); err != nil {
			log.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", "err", err)
	}

	log.Info("server exiting")
}
