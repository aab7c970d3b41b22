package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/mtereshin/medtrack/internal/client/cli"
	"github.com/mtereshin/medtrack/internal/client/config"
	"github.com/mtereshin/medtrack/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewDefault(os.Stderr, parseLevel(cfg.LogLevel))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}

func parseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
