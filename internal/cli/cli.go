package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/fitsgridgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("fitsgridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
fitsgridgo - Batch SourceExtractor driver for FITS image directories.

Discovers FITS images, pairs each with its weight/uncertainty companion by
filename convention, and runs SourceExtractor once per image, writing one
catalog per input.

Usage:
  fitsgridgo [options] [IMAGE_DIR]

Arguments:
  IMAGE_DIR
    Directory containing FITS images. Defaults to the working directory.

Options:
`)
		flagSet.PrintDefaults()
	}

	dirFlag := flagSet.String("dir", "", "Directory containing FITS images.")
	dFlag := flagSet.String("d", "", "Directory containing FITS images (shorthand).")
	outputFlag := flagSet.String("output", "", "Catalog output directory. Overrides the settings file.")
	settingsFlag := flagSet.String("settings", "", "Path to an HCL settings file. Default: fitsgrid.hcl if present.")
	binaryFlag := flagSet.String("binary", "", "SourceExtractor binary to invoke. Overrides the settings file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	dir := "."
	if *dirFlag != "" {
		dir = *dirFlag
	} else if *dFlag != "" {
		dir = *dFlag
	} else if flagSet.NArg() > 0 {
		dir = flagSet.Arg(0)
	}
	slog.Debug("Image directory determined.", "dir", dir)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ImageDir:     dir,
		SettingsPath: *settingsFlag,
		OutputDir:    *outputFlag,
		Binary:       *binaryFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
