// Package weight resolves the weight/uncertainty companion image of a
// science frame from filename conventions alone. It performs read-only
// existence checks and never mutates the filesystem.
package weight
