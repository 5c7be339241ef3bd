package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"formexport/internal/config"
	"formexport/internal/container"

	"github.com/spf13/pflag"
)

func main() {
	config.DefineFlags(pflag.CommandLine)
	pflag.Parse()

	appConfig, err := config.Load(pflag.CommandLine)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	server, err := c.HTTPServer()
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting formexport server on %s", appConfig.Address())
	if err := server.Run(ctx, appConfig.Address()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
