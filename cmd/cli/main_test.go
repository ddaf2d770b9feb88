package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/fitsgridgo/internal/cli"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_UsageError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, []string{"-log-format", "xml"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
}

func TestRun_MissingExtractorIsFatal(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An image directory exists, but the extractor binary does not; the run
	// must abort before processing anything.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.fits"), nil, 0o600))
	args := []string{"-binary", filepath.Join(dir, "no-such-binary"), dir}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "SourceExtractor not found")
}

func TestRun_MalformedSettingsFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	settings := filepath.Join(dir, "fitsgrid.hcl")
	require.NoError(t, os.WriteFile(settings, []byte("binary = {"), 0o600))
	args := []string{"-settings", settings, dir}

	// --- Act ---
	err := run(&bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load settings")
}
