package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/fitsgridgo/internal/config"
	"github.com/vk/fitsgridgo/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	settings *config.Settings
}

// NewApp constructs the application: it builds an isolated logger, loads the
// layered pipeline settings, and applies CLI overrides on top.
func NewApp(outW io.Writer, appConfig *Config) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	settings, err := config.Load(ctx, appConfig.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// CLI flags win over the settings file and the environment.
	if appConfig.OutputDir != "" {
		settings.OutputDir = appConfig.OutputDir
	}
	if appConfig.Binary != "" {
		settings.Binary = appConfig.Binary
	}
	logger.Debug("Settings loaded.",
		"binary", settings.Binary,
		"output_dir", settings.OutputDir,
		"config_file", settings.ConfigFile,
		"param_file", settings.ParamFile,
	)

	return &App{
		outW:     outW,
		logger:   logger,
		settings: settings,
	}, nil
}

// Settings returns the effective pipeline settings. This is primarily for testing.
func (a *App) Settings() *config.Settings {
	return a.settings
}
