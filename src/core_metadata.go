package main

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// captureTime returns the EXIF capture date of an image, falling back to
// the file's modification time when there is no usable EXIF block.
func captureTime(path string) time.Time {
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if x, err := exif.Decode(f); err == nil {
			if tm, err := x.DateTime(); err == nil {
				return tm
			}
		}
	}

	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}
	return time.Now()
}

// preserveTimes stamps the output file with the source's capture time.
// Best effort: a failed chtimes never fails the file.
func preserveTimes(srcPath, outPath string) {
	tm := captureTime(srcPath)
	os.Chtimes(outPath, tm, tm)
}
