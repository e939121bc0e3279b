package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"

	// WebP has no encoder in the codec library; decoding registers here so
	// imaging.Open can read .webp inputs.
	_ "golang.org/x/image/webp"
)

// FitSize computes the output dimensions for an image of origW x origH
// against the targetW x targetH box. With keepAspect false the target is
// returned unchanged (the image may distort). With keepAspect true the
// image is scaled uniformly to fit inside the box: the longer axis is pinned
// to its target first, the other derived from the original ratio, then
// either axis that still overshoots is pinned instead. Derived dimensions
// never drop below 1px.
func FitSize(origW, origH, targetW, targetH int, keepAspect bool) (int, int, error) {
	if origW <= 0 || origH <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", errInvalidDimensions, origW, origH)
	}
	if !keepAspect {
		return targetW, targetH, nil
	}

	ratio := float64(origW) / float64(origH)

	var w, h int
	if origW >= origH {
		w = targetW
		h = int(float64(targetW) / ratio)
	} else {
		h = targetH
		w = int(float64(targetH) * ratio)
	}

	if h > targetH {
		h = targetH
		w = int(float64(targetH) * ratio)
	}
	if w > targetW {
		w = targetW
		h = int(float64(targetW) / ratio)
	}

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h, nil
}

// hasAlpha reports whether the decoded image's color model can carry
// transparency. This is a mode check, not a pixel scan: an opaque PNG
// still counts.
func hasAlpha(img image.Image) bool {
	switch im := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return true
	case *image.Paletted:
		for _, c := range im.Palette {
			if _, _, _, a := c.RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}

// flattenWhite composites img onto an opaque white background, for encoding
// into formats that cannot represent an alpha channel.
func flattenWhite(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// outputFormatFor returns the effective output format for one input file:
// the configured format, or the file's own (lowercased) extension.
func outputFormatFor(cfg *Config, path string) string {
	if cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// saveImage encodes img to path in the given format. Quality applies to
// lossy formats only. WebP output is lossless via the native encoder; every
// other format goes through the codec library, which picks the encoder from
// the file extension.
func saveImage(img image.Image, path, format string, quality int) error {
	if format == "webp" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := nativewebp.Encode(f, img, nil); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	if lossyFormats[format] {
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
	return imaging.Save(img, path)
}

// resizeOutcome describes one successfully processed file, for log lines.
type resizeOutcome struct {
	OutPath   string
	SrcWidth  int
	SrcHeight int
	Width     int
	Height    int
	SrcBytes  int64
	OutBytes  int64
}

// resizeOne runs the full per-file pipeline: decode, flatten if the target
// format cannot hold alpha, fit, Lanczos resample, encode. Any error aborts
// only this file; the caller isolates it from the rest of the batch.
func resizeOne(cfg *Config, file *ImageFile) (*resizeOutcome, error) {
	img, err := imaging.Open(file.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	b := img.Bounds()
	file.Width, file.Height = b.Dx(), b.Dy()

	format := outputFormatFor(cfg, file.Path)
	if lossyFormats[format] && hasAlpha(img) {
		img = flattenWhite(img)
	}

	w, h, err := FitSize(file.Width, file.Height, cfg.TargetWidth, cfg.TargetHeight, cfg.KeepAspect)
	if err != nil {
		return nil, err
	}

	resized := imaging.Resize(img, w, h, imaging.Lanczos)

	outPath := filepath.Join(cfg.OutputDir, outputName(filepath.Base(file.Path), cfg.OutputFormat))
	if err := saveImage(resized, outPath, format, cfg.Quality); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	if cfg.KeepTimes {
		preserveTimes(file.Path, outPath)
	}

	out := &resizeOutcome{
		OutPath:   outPath,
		SrcWidth:  file.Width,
		SrcHeight: file.Height,
		Width:     w,
		Height:    h,
		SrcBytes:  file.Size,
	}
	if fi, err := os.Stat(outPath); err == nil {
		out.OutBytes = fi.Size()
	}
	return out, nil
}
