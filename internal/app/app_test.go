package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBatchDir builds an image directory with the extractor control files, a
// stub binary, and the given image files. It returns the directory and the
// stub binary path.
func newBatchDir(t *testing.T, images ...string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.sex"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.param"), nil, 0o600))
	for _, image := range images {
		require.NoError(t, os.WriteFile(filepath.Join(dir, image), nil, 0o600))
	}

	script := "#!/bin/sh\ncase \"$1\" in\n  *bad*) exit 1 ;;\nesac\nexit 0\n"
	binary := filepath.Join(t.TempDir(), "sex")
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))

	return dir, binary
}

func newTestConfig(dir, binary string) *Config {
	return &Config{
		ImageDir:  dir,
		Binary:    binary,
		OutputDir: filepath.Join(dir, "catalogs"),
		LogFormat: "text",
		LogLevel:  "error",
	}
}

func TestRun_HappyPath(t *testing.T) {
	dir, binary := newBatchDir(t, "a.fits", "b.FIT")
	out := &bytes.Buffer{}
	cfg := newTestConfig(dir, binary)

	a, err := NewApp(out, cfg)
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background(), cfg))

	assert.Contains(t, out.String(), "Found 2 image(s):")
	assert.Contains(t, out.String(), "SUMMARY: 2/2 images processed successfully")
}

func TestRun_PerImageFailuresDoNotFailTheRun(t *testing.T) {
	dir, binary := newBatchDir(t, "a.fits", "bad.fits", "c.fits")
	out := &bytes.Buffer{}
	cfg := newTestConfig(dir, binary)

	a, err := NewApp(out, cfg)
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background(), cfg), "best-effort batch: individual failures must not abort the run")
	assert.Contains(t, out.String(), "SUMMARY: 2/3 images processed successfully")
}

func TestRun_FatalPreflight(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		dir, _ := newBatchDir(t, "a.fits")
		cfg := newTestConfig(dir, filepath.Join(dir, "no-such-binary"))

		a, err := NewApp(&bytes.Buffer{}, cfg)
		require.NoError(t, err)

		err = a.Run(context.Background(), cfg)
		assert.ErrorContains(t, err, "SourceExtractor not found")
	})

	t.Run("missing configuration file", func(t *testing.T) {
		dir, binary := newBatchDir(t, "a.fits")
		require.NoError(t, os.Remove(filepath.Join(dir, "default.sex")))
		cfg := newTestConfig(dir, binary)

		a, err := NewApp(&bytes.Buffer{}, cfg)
		require.NoError(t, err)

		err = a.Run(context.Background(), cfg)
		assert.ErrorContains(t, err, "configuration file")
	})

	t.Run("missing parameter file", func(t *testing.T) {
		dir, binary := newBatchDir(t, "a.fits")
		require.NoError(t, os.Remove(filepath.Join(dir, "default.param")))
		cfg := newTestConfig(dir, binary)

		a, err := NewApp(&bytes.Buffer{}, cfg)
		require.NoError(t, err)

		err = a.Run(context.Background(), cfg)
		assert.ErrorContains(t, err, "parameter file")
	})

	t.Run("no images", func(t *testing.T) {
		dir, binary := newBatchDir(t)
		cfg := newTestConfig(dir, binary)

		a, err := NewApp(&bytes.Buffer{}, cfg)
		require.NoError(t, err)

		err = a.Run(context.Background(), cfg)
		assert.ErrorContains(t, err, "no FITS images found")
	})
}

func TestNewApp_FlagOverridesSettings(t *testing.T) {
	cfg := &Config{
		ImageDir:  ".",
		Binary:    "/opt/sextractor/bin/sex",
		OutputDir: "night1-catalogs",
		LogFormat: "text",
		LogLevel:  "error",
	}

	a, err := NewApp(&bytes.Buffer{}, cfg)
	require.NoError(t, err)

	assert.Equal(t, "/opt/sextractor/bin/sex", a.Settings().Binary)
	assert.Equal(t, "night1-catalogs", a.Settings().OutputDir)
	assert.Equal(t, "default.sex", a.Settings().ConfigFile)
}

func TestNewApp_MissingExplicitSettingsFile(t *testing.T) {
	cfg := &Config{
		ImageDir:     ".",
		SettingsPath: filepath.Join(t.TempDir(), "absent.hcl"),
		LogFormat:    "text",
		LogLevel:     "error",
	}

	_, err := NewApp(&bytes.Buffer{}, cfg)
	assert.ErrorContains(t, err, "failed to load settings")
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{ImageDir: "."})
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.ImageDir)
}
