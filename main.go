package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/postcraft/postcraft/internal/cli"
	"github.com/postcraft/postcraft/internal/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Cancel in-flight webhook calls and voice capture on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := cli.Execute(ctx, cfg, os.Args[1:])
	stop()
	os.Exit(code)
}
