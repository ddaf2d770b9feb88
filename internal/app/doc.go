// Package app wires the application together: logging, settings, preflight
// checks, and the batch run itself. It owns the user-facing console output;
// everything else logs through slog.
package app
