package main

import (
	"errors"
	"fmt"
	"strings"
)

// Supported input extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tiff": true, ".webp": true,
}

// Formats accepted by -format. TIFF is read-only.
var outputFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true,
	"gif": true, "bmp": true, "webp": true,
}

// lossyFormats take a quality setting and cannot carry an alpha channel.
var lossyFormats = map[string]bool{
	"jpg": true, "jpeg": true,
}

var (
	errNotDirectory      = errors.New("not a directory")
	errInvalidDimensions = errors.New("invalid image dimensions")
)

// Config holds one batch run's settings. Immutable once flag parsing is done.
type Config struct {
	InputDir      string
	OutputDir     string // defaults to <InputDir>/resized
	TargetWidth   int
	TargetHeight  int
	KeepAspect    bool
	OutputFormat  string // "" keeps each file's own format
	Quality       int    // 1-100, applied to lossy output only
	Workers       int
	FileLimit     int // 0 = no limit
	SkipUnchanged bool
	KeepTimes     bool
}

// Validate checks the value ranges that flag parsing cannot.
func (c *Config) Validate() error {
	if c.TargetWidth <= 0 || c.TargetHeight <= 0 {
		return fmt.Errorf("target size must be positive, got %dx%d", c.TargetWidth, c.TargetHeight)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be 1-100, got %d", c.Quality)
	}
	if c.OutputFormat != "" && !outputFormats[c.OutputFormat] {
		return fmt.Errorf("unsupported output format %q", c.OutputFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Fingerprint identifies the resize-relevant settings for cache validity.
// Any change to these must invalidate previous skip decisions.
func (c *Config) Fingerprint() string {
	return fmt.Sprintf("%dx%d|aspect=%t|format=%s|quality=%d",
		c.TargetWidth, c.TargetHeight, c.KeepAspect, c.OutputFormat, c.Quality)
}

// ImageFile is one discovered input, dimensions known only after decode.
type ImageFile struct {
	Path   string
	Size   int64
	Width  int
	Height int
}

// BatchResult aggregates per-file outcomes across one run.
type BatchResult struct {
	Processed int
	Failed    int
	Skipped   int
}

// Total returns the number of files the batch looked at.
func (r *BatchResult) Total() int {
	return r.Processed + r.Failed + r.Skipped
}

// Progress is a snapshot sent over the progress channel during a batch.
type Progress struct {
	TotalFiles     int
	ProcessedFiles int
	CurrentFile    string
}

// outputName maps an input filename to its output filename: same stem,
// extension from the configured format when set, else the input's own
// extension. The extension is always lowercased.
func outputName(inputName, format string) string {
	ext := ""
	if i := strings.LastIndex(inputName, "."); i >= 0 {
		ext = inputName[i+1:]
		inputName = inputName[:i]
	}
	if format == "" {
		format = strings.ToLower(ext)
	}
	return inputName + "." + format
}
