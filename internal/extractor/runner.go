// Package extractor builds and executes SourceExtractor invocations for
// single images. It owns the output naming scheme (one catalog and one check
// image per input, named after the image's stem) but knows nothing about
// batch ordering or error policy.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vk/fitsgridgo/internal/weight"
)

// Runner invokes the extractor binary once per call.
type Runner struct {
	// Binary is the extractor executable, resolved through PATH unless an
	// explicit path is given.
	Binary string

	// ConfigFile is the SExtractor configuration file passed via -c.
	ConfigFile string

	// OutputDir receives one catalog and one check image per input.
	OutputDir string
}

// Result captures the outcome of a single extraction.
type Result struct {
	Catalog    string
	CheckImage string
	ExitCode   int
	Stderr     string
}

// New creates a Runner.
func New(binary, configFile, outputDir string) *Runner {
	return &Runner{Binary: binary, ConfigFile: configFile, OutputDir: outputDir}
}

// Probe checks that the extractor binary is present and runnable by invoking
// it with --version. Any failure means the binary is unusable.
func (r *Runner) Probe(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.Binary, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%q is not runnable: %w", r.Binary, err)
	}
	return nil
}

// CatalogPath returns the catalog file the extractor will write for an image.
func (r *Runner) CatalogPath(imagePath string) string {
	return filepath.Join(r.OutputDir, weight.Stem(imagePath)+".cat")
}

// CheckImagePath returns the check-image file for an image.
func (r *Runner) CheckImagePath(imagePath string) string {
	return filepath.Join(r.OutputDir, weight.Stem(imagePath)+"_check.fits")
}

// Args assembles the extractor command line for one image. The weight flags
// are appended only when a companion was resolved.
func (r *Runner) Args(imagePath string, companion *weight.Candidate) []string {
	args := []string{
		imagePath,
		"-c", r.ConfigFile,
		"-CATALOG_NAME", r.CatalogPath(imagePath),
		"-CHECKIMAGE_NAME", r.CheckImagePath(imagePath),
	}
	if companion != nil {
		args = append(args,
			"-WEIGHT_TYPE", string(companion.Role),
			"-WEIGHT_IMAGE", companion.Path,
		)
	}
	return args
}

// Run executes the extractor for one image, blocking until it exits. A
// non-zero exit is reported through Result.ExitCode, not as an error; an
// error is returned only when the process could not be run at all.
func (r *Runner) Run(ctx context.Context, imagePath string, companion *weight.Candidate) (*Result, error) {
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", r.OutputDir, err)
	}

	cmd := exec.CommandContext(ctx, r.Binary, r.Args(imagePath, companion)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &Result{
		Catalog:    r.CatalogPath(imagePath),
		CheckImage: r.CheckImagePath(imagePath),
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run %s: %w", r.Binary, err)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	result.Stderr = stderr.String()
	return result, nil
}
