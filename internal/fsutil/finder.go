// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindImages scans a single directory (non-recursive) for files ending with
// any of the given extensions and returns their paths in sorted order.
// Extension matching is exact: case variants must be listed explicitly.
func FindImages(dir string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		panic("extensions must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, ext := range extensions {
			if strings.HasSuffix(entry.Name(), ext) {
				images = append(images, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}

	sort.Strings(images)
	return images, nil
}

// Exists reports whether a regular file exists at the given path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
