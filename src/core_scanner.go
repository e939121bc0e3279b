package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ListImages returns the supported image files directly inside dir, in
// directory-listing order. It does not recurse. Subdirectories and symlinks
// that resolve to directories are excluded; symlinks to regular files count.
func ListImages(dir string) ([]*ImageFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input folder %s: %w", dir, errNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}

	var files []*ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		fi, err := os.Stat(path) // follows symlinks
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, &ImageFile{Path: path, Size: fi.Size()})
	}

	return files, nil
}
