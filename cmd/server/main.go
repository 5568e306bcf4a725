package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/sessiongate/internal/logging"
	"github.com/dmitrijs2005/sessiongate/internal/server"
	"github.com/dmitrijs2005/sessiongate/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, os.Stdout)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
