// Package batch drives the extractor over a set of images, strictly one at a
// time, with a continue-on-error policy: an image whose extraction fails is
// recorded and skipped, and the batch moves on.
package batch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/vk/fitsgridgo/internal/ctxlog"
	"github.com/vk/fitsgridgo/internal/extractor"
	"github.com/vk/fitsgridgo/internal/weight"
)

// Failure records one image whose extraction did not succeed.
type Failure struct {
	Image  string
	Reason string
}

// Summary is the outcome of a batch run.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    []Failure
}

// String renders the summary in the "M/N images processed successfully" form
// used in the final report.
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d images processed successfully", s.Succeeded, s.Attempted)
}

// Engine runs extractions sequentially. There is no retry, no timeout, and
// no overlap between invocations.
type Engine struct {
	runner      *extractor.Runner
	resolver    *weight.Resolver
	progressOut io.Writer
}

// New creates an Engine. Progress is rendered to progressOut.
func New(runner *extractor.Runner, resolver *weight.Resolver, progressOut io.Writer) *Engine {
	return &Engine{runner: runner, resolver: resolver, progressOut: progressOut}
}

// Run processes every image in order and returns the summary. Every image is
// attempted exactly once regardless of earlier failures.
func (e *Engine) Run(ctx context.Context, images []string) Summary {
	logger := ctxlog.FromContext(ctx)

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetDescription("⏳ extracting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWriter(e.progressOut),
	)

	var summary Summary
	for _, image := range images {
		summary.Attempted++
		logger.Info("Processing image.",
			"image", image,
			"catalog", e.runner.CatalogPath(image),
		)

		var companion *weight.Candidate
		if candidate, ok := e.resolver.Resolve(image); ok {
			companion = &candidate
			logger.Info("Companion weight image found.",
				"weight", candidate.Path,
				"weight_type", string(candidate.Role),
			)
		}

		result, err := e.runner.Run(ctx, image, companion)
		switch {
		case err != nil:
			logger.Error("✗ Extraction could not be run.", "image", image, "error", err)
			summary.Failed = append(summary.Failed, Failure{Image: image, Reason: err.Error()})
		case result.ExitCode != 0:
			logger.Error("✗ Extraction failed.",
				"image", image,
				"exit_code", result.ExitCode,
				"stderr", strings.TrimSpace(result.Stderr),
			)
			summary.Failed = append(summary.Failed, Failure{
				Image:  image,
				Reason: fmt.Sprintf("exit code %d", result.ExitCode),
			})
		default:
			logger.Info("✓ Extraction succeeded.", "image", image, "catalog", result.Catalog)
			summary.Succeeded++
		}

		_ = bar.Add(1)
	}
	return summary
}
