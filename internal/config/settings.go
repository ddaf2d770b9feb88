package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/vk/fitsgridgo/internal/ctxlog"
	"github.com/vk/fitsgridgo/internal/fsutil"
)

// DefaultFileName is the settings file picked up from the working directory
// when no explicit -settings path is given.
const DefaultFileName = "fitsgrid.hcl"

// Settings holds the full pipeline configuration: which binary to drive,
// which SExtractor control files to pass, and the filename conventions used
// to pair science images with their weight/uncertainty companions.
type Settings struct {
	Binary     string `env:"FITSGRID_BINARY"`
	ConfigFile string `env:"FITSGRID_CONFIG_FILE"`
	ParamFile  string `env:"FITSGRID_PARAM_FILE"`
	OutputDir  string `env:"FITSGRID_OUTPUT_DIR"`

	// Extensions are the case-variant FITS extensions considered during
	// discovery and companion matching. Matching is exact, so every variant
	// must be listed.
	Extensions []string `env:"FITSGRID_EXTENSIONS" envSeparator:","`

	// RMSSuffixes and WeightSuffixes are stem suffixes identifying a
	// companion by appending to the science image's stem.
	RMSSuffixes    []string `env:"FITSGRID_RMS_SUFFIXES" envSeparator:","`
	WeightSuffixes []string `env:"FITSGRID_WEIGHT_SUFFIXES" envSeparator:","`

	// RMSNames and WeightNames are the component names substituted for a
	// science marker (e.g. galaxy-int -> galaxy-unc).
	RMSNames    []string `env:"FITSGRID_RMS_NAMES" envSeparator:","`
	WeightNames []string `env:"FITSGRID_WEIGHT_NAMES" envSeparator:","`

	// ScienceMarkers are the stem substrings recognized as the
	// intensity/science component of a multi-plane image set.
	ScienceMarkers []string `env:"FITSGRID_SCIENCE_MARKERS" envSeparator:","`
}

// Defaults returns the built-in settings, matching the conventions of the
// common survey pipelines this tool was written for.
func Defaults() *Settings {
	return &Settings{
		Binary:         "sex",
		ConfigFile:     "default.sex",
		ParamFile:      "default.param",
		OutputDir:      "catalogs",
		Extensions:     []string{".fits", ".fit", ".FITS", ".FIT"},
		RMSSuffixes:    []string{"_stddev", "_stdev", "_rms", "_unc", "_uncert", "_sigma"},
		WeightSuffixes: []string{"_weight", "_wht", "_wt", "_ivar"},
		RMSNames:       []string{"unc", "stddev", "stdev", "rms", "uncert", "sigma"},
		WeightNames:    []string{"weight", "wht", "wt", "ivar"},
		ScienceMarkers: []string{"-int", "-sci"},
	}
}

// hclSettings is the HCL-facing schema for a settings file. Pointer and
// slice fields distinguish "absent" from "explicitly set", so a partial file
// only overrides what it names.
type hclSettings struct {
	Binary     *string `hcl:"binary,optional"`
	ConfigFile *string `hcl:"config_file,optional"`
	ParamFile  *string `hcl:"param_file,optional"`
	OutputDir  *string `hcl:"output_dir,optional"`

	Extensions     []string `hcl:"extensions,optional"`
	RMSSuffixes    []string `hcl:"rms_suffixes,optional"`
	WeightSuffixes []string `hcl:"weight_suffixes,optional"`
	RMSNames       []string `hcl:"rms_names,optional"`
	WeightNames    []string `hcl:"weight_names,optional"`
	ScienceMarkers []string `hcl:"science_markers,optional"`
}

// Load builds the effective settings: built-in defaults, then the optional
// HCL settings file, then FITSGRID_* environment variables. A .env file in
// the working directory is honored for local development.
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	s := Defaults()

	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment overrides from .env file.")
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	switch {
	case fsutil.Exists(path):
		if err := s.applyFile(path); err != nil {
			return nil, err
		}
		logger.Debug("Settings file applied.", "path", path)
	case explicit:
		return nil, fmt.Errorf("settings file %s does not exist", path)
	}

	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyFile decodes one HCL settings file and overlays its values.
func (s *Settings) applyFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse settings file %s: %s", path, diags.Error())
	}

	var parsed hclSettings
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode settings file %s: %s", path, diags.Error())
	}

	if parsed.Binary != nil {
		s.Binary = *parsed.Binary
	}
	if parsed.ConfigFile != nil {
		s.ConfigFile = *parsed.ConfigFile
	}
	if parsed.ParamFile != nil {
		s.ParamFile = *parsed.ParamFile
	}
	if parsed.OutputDir != nil {
		s.OutputDir = *parsed.OutputDir
	}
	if parsed.Extensions != nil {
		s.Extensions = parsed.Extensions
	}
	if parsed.RMSSuffixes != nil {
		s.RMSSuffixes = parsed.RMSSuffixes
	}
	if parsed.WeightSuffixes != nil {
		s.WeightSuffixes = parsed.WeightSuffixes
	}
	if parsed.RMSNames != nil {
		s.RMSNames = parsed.RMSNames
	}
	if parsed.WeightNames != nil {
		s.WeightNames = parsed.WeightNames
	}
	if parsed.ScienceMarkers != nil {
		s.ScienceMarkers = parsed.ScienceMarkers
	}
	return nil
}

func (s *Settings) validate() error {
	for name, value := range map[string]string{
		"binary":      s.Binary,
		"config_file": s.ConfigFile,
		"param_file":  s.ParamFile,
		"output_dir":  s.OutputDir,
	} {
		if value == "" {
			return fmt.Errorf("settings field %s cannot be empty", name)
		}
	}
	for name, values := range map[string][]string{
		"extensions":      s.Extensions,
		"rms_suffixes":    s.RMSSuffixes,
		"weight_suffixes": s.WeightSuffixes,
		"rms_names":       s.RMSNames,
		"weight_names":    s.WeightNames,
	} {
		if len(values) == 0 {
			return fmt.Errorf("settings list %s cannot be empty", name)
		}
	}
	// ScienceMarkers may legitimately be emptied to disable marker
	// replacement entirely.
	return nil
}
