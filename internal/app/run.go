package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/fitsgridgo/internal/batch"
	"github.com/vk/fitsgridgo/internal/ctxlog"
	"github.com/vk/fitsgridgo/internal/extractor"
	"github.com/vk/fitsgridgo/internal/fsutil"
	"github.com/vk/fitsgridgo/internal/weight"
)

// Run executes the batch: preflight checks, image discovery, sequential
// extraction, and the final summary. Preflight failures abort the whole run
// with an error (non-zero exit); per-image extraction failures do not.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	s := a.settings
	configPath := resolveControlFile(appConfig.ImageDir, s.ConfigFile)
	paramPath := resolveControlFile(appConfig.ImageDir, s.ParamFile)
	runner := extractor.New(s.Binary, configPath, s.OutputDir)

	// Preflight. All of these are fatal before any image is touched.
	if err := runner.Probe(ctx); err != nil {
		return fmt.Errorf("SourceExtractor not found: %w", err)
	}
	if !fsutil.Exists(configPath) {
		return fmt.Errorf("configuration file %q not found", configPath)
	}
	if !fsutil.Exists(paramPath) {
		return fmt.Errorf("parameter file %q not found", paramPath)
	}

	images, err := fsutil.FindImages(appConfig.ImageDir, s.Extensions)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("no FITS images found in %s", appConfig.ImageDir)
	}

	fmt.Fprintf(a.outW, "Found %d image(s):\n", len(images))
	for _, image := range images {
		fmt.Fprintf(a.outW, "  - %s\n", image)
	}

	a.logger.Info("🔭 Starting batch extraction.", "images", len(images), "output_dir", s.OutputDir)
	engine := batch.New(runner, weight.NewResolver(s), a.outW)
	summary := engine.Run(ctx, images)
	a.logger.Info("🏁 Batch finished.", "succeeded", summary.Succeeded, "failed", len(summary.Failed))

	fmt.Fprintf(a.outW, "SUMMARY: %s\n", summary)
	fmt.Fprintf(a.outW, "Catalogs saved in %q\n", s.OutputDir)

	a.logger.Debug("App.Run method finished.")
	return nil
}

// resolveControlFile anchors a relative SExtractor control file to the image
// directory; absolute paths are used as-is. With the default image directory
// "." this reads the fixed-name files from the working directory.
func resolveControlFile(imageDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(imageDir, path)
}
