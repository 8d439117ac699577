package main

import (
	"log/slog"
	"os"

	app "github.com/rocketscienceinc/supertictactoe-backend/internal"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/config"
)

func main() {
	conf := config.MustLoad(configPath())
	logger := initLogger(conf.LogLevel)

	if err := app.RunApp(logger, conf); err != nil {
		logger.Error("app run failed", "error", err)
		os.Exit(1)
	}
}

// configPath resolves the config file, CONFIG_PATH wins over the default
// next to the binary's working directory.
func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	return "config.yml"
}

func initLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
