// Package config loads the pipeline settings from layered sources: built-in
// defaults, an optional HCL settings file, and FITSGRID_* environment
// variables, in that order of precedence (later wins). CLI flags are applied
// on top by the app layer.
package config
