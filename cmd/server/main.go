// @title           Taskverse API
// @version         1.0
// @description     Task tracking API with reminders, ownership and PDF reports.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"taskverse/internal/app"
	"taskverse/internal/config"

	_ "taskverse/docs"
)

func main() {
	cfg := config.LoadConfig()
	log.Printf("config loaded, driver=%s", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app init: %v", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	if err := application.Run(ctx); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
