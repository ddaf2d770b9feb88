package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ImageDir is the directory scanned for FITS images.
	ImageDir string

	// SettingsPath is an explicit settings file; empty means "use
	// fitsgrid.hcl from the working directory if present".
	SettingsPath string

	// OutputDir and Binary, when non-empty, override the loaded settings.
	OutputDir string
	Binary    string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ImageDir == "" {
		return nil, errors.New("ImageDir is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
