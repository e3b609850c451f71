// Package pipeline runs screenshots through recognition, analysis,
// normalization, storage and notification.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoImages = errors.New("no images found")

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
}

// IsImage reports whether name has a supported screenshot extension.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// ResolveImages returns path itself when it is a file, or the screenshots
// directly inside it, sorted by name, when it is a directory.
func ResolveImages(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		images = append(images, filepath.Join(path, e.Name()))
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, path)
	}
	sort.Strings(images)
	return images, nil
}
