package weight

import (
	"path/filepath"
	"strings"

	"github.com/vk/fitsgridgo/internal/config"
	"github.com/vk/fitsgridgo/internal/fsutil"
)

// Role tells the extractor how to interpret a companion image. The values
// are the literal WEIGHT_TYPE arguments SExtractor expects.
type Role string

const (
	// PixelRMS marks a companion encoding per-pixel standard deviation
	// (stddev/uncertainty/sigma maps).
	PixelRMS Role = "MAP_RMS"

	// InverseWeight marks a companion encoding a weight or inverse-variance
	// map.
	InverseWeight Role = "MAP_WEIGHT"
)

// Candidate is a resolved companion image for a science frame.
type Candidate struct {
	Role Role
	Path string
}

// Resolver finds the weight/uncertainty companion of a science image by
// filename convention. Two patterns are recognized, in order:
//
//  1. Suffix: image.fits -> image_unc.fits, image_weight.fits, ...
//  2. Marker replacement: image-int.fits -> image-unc.fits, ...
//
// RMS-style candidates always take precedence over weight-style ones, and
// suffix matching always takes precedence over marker replacement. Matching
// is plain string comparison against the filesystem; absence of a companion
// is a normal outcome.
type Resolver struct {
	settings *config.Settings
}

// NewResolver creates a Resolver using the naming tables from settings.
func NewResolver(settings *config.Settings) *Resolver {
	return &Resolver{settings: settings}
}

// Resolve returns the companion for imagePath, or ok=false when none of the
// naming patterns yields an existing file.
func (r *Resolver) Resolve(imagePath string) (Candidate, bool) {
	dir := filepath.Dir(imagePath)
	stem := Stem(imagePath)

	if path, ok := r.bySuffix(dir, stem, r.settings.RMSSuffixes); ok {
		return Candidate{Role: PixelRMS, Path: path}, true
	}
	if path, ok := r.bySuffix(dir, stem, r.settings.WeightSuffixes); ok {
		return Candidate{Role: InverseWeight, Path: path}, true
	}
	if path, ok := r.byMarker(dir, stem, r.settings.RMSNames); ok {
		return Candidate{Role: PixelRMS, Path: path}, true
	}
	if path, ok := r.byMarker(dir, stem, r.settings.WeightNames); ok {
		return Candidate{Role: InverseWeight, Path: path}, true
	}
	return Candidate{}, false
}

// bySuffix tests <stem><suffix><ext> for every suffix and extension variant,
// returning the first existing path.
func (r *Resolver) bySuffix(dir, stem string, suffixes []string) (string, bool) {
	for _, suffix := range suffixes {
		for _, ext := range r.settings.Extensions {
			candidate := filepath.Join(dir, stem+suffix+ext)
			if fsutil.Exists(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// byMarker substitutes each recognized science marker in the stem with each
// candidate component name and tests the result across extension variants.
// Stems without a science marker never match.
func (r *Resolver) byMarker(dir, stem string, names []string) (string, bool) {
	for _, marker := range r.settings.ScienceMarkers {
		if !strings.Contains(stem, marker) {
			continue
		}
		for _, name := range names {
			replaced := strings.ReplaceAll(stem, marker, "-"+name)
			for _, ext := range r.settings.Extensions {
				candidate := filepath.Join(dir, replaced+ext)
				if fsutil.Exists(candidate) {
					return candidate, true
				}
			}
		}
	}
	return "", false
}

// Stem returns the file name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
