package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Extensions that are recognised as images, compared case-insensitively.
var Extensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}

type Image struct {
	Path string
	Name string
	Size int64
}

func (img Image) SizeKB() float64 {
	return float64(img.Size) / 1024
}

func IsImage(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// Find lists the images directly inside dir, sorted by path. Subdirectories
// and dotfiles are skipped. A missing directory is logged and results in an
// empty catalog rather than an error.
func Find(log *slog.Logger, dir string) (images []Image, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Error("images directory not found", slog.String("dir", dir))
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: failed to read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !IsImage(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("catalog: failed to stat %q: %w", entry.Name(), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		images = append(images, Image{
			Path: filepath.Join(dir, entry.Name()),
			Name: entry.Name(),
			Size: info.Size(),
		})
	}
	slices.SortFunc(images, func(a, b Image) int {
		return strings.Compare(a.Path, b.Path)
	})
	return images, nil
}
