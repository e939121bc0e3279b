package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
)

// Reporter receives the human-readable per-file and batch messages, keeping
// message formatting out of the orchestration control flow. The CLI prints
// them; the TUI renders its own progress and discards them.
type Reporter interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type consoleReporter struct{}

func (consoleReporter) Infof(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

func (consoleReporter) Warnf(format string, args ...any) {
	fmt.Printf("Warning: "+format+"\n", args...)
}

func (consoleReporter) Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

type nopReporter struct{}

func (nopReporter) Infof(string, ...any)  {}
func (nopReporter) Warnf(string, ...any)  {}
func (nopReporter) Errorf(string, ...any) {}

// RunBatch resizes every supported image in cfg.InputDir into cfg.OutputDir.
// Failures are isolated per file: one bad image increments Failed and the
// batch moves on. Context cancellation stops the batch between files and is
// returned alongside the counters accumulated so far.
func RunBatch(ctx context.Context, cfg *Config, journal *Journal, rep Reporter, progressChan chan<- Progress) (*BatchResult, error) {
	result := &BatchResult{}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return result, fmt.Errorf("create output folder: %w", err)
	}

	files, err := ListImages(cfg.InputDir)
	if err != nil {
		return result, err
	}
	if cfg.FileLimit > 0 && len(files) > cfg.FileLimit {
		files = files[:cfg.FileLimit]
	}
	if len(files) == 0 {
		rep.Warnf("no supported image files found in %s", cfg.InputDir)
		return result, nil
	}

	rep.Infof("Found %d image(s) to process", len(files))

	// Drop journal entries for sources that no longer exist. Only safe when
	// the whole directory was enumerated.
	if journal != nil && cfg.FileLimit == 0 {
		validPaths := make(map[string]bool, len(files))
		for _, f := range files {
			validPaths[f.Path] = true
		}
		if pruned, err := journal.PruneDeleted(validPaths); err == nil && pruned > 0 {
			rep.Infof("Pruned %d deleted file(s) from the journal", pruned)
		}
	}

	type task struct {
		idx  int
		file *ImageFile
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done int
	)
	taskChan := make(chan task, len(files))

	workers := cfg.Workers
	if workers > len(files) {
		workers = len(files)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskChan {
				if ctx.Err() != nil {
					continue
				}

				processOne(cfg, journal, rep, t.idx, len(files), t.file, result, &mu)

				mu.Lock()
				done++
				if progressChan != nil {
					select {
					case progressChan <- Progress{
						TotalFiles:     len(files),
						ProcessedFiles: done,
						CurrentFile:    t.file.Path,
					}:
					default:
					}
				}
				mu.Unlock()
			}
		}()
	}

	for i, f := range files {
		taskChan <- task{idx: i + 1, file: f}
	}
	close(taskChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// processOne handles one file end to end and updates exactly one counter.
func processOne(cfg *Config, journal *Journal, rep Reporter, idx, total int, file *ImageFile, result *BatchResult, mu *sync.Mutex) {
	name := filepath.Base(file.Path)

	if journal != nil && cfg.SkipUnchanged {
		if fi, err := os.Stat(file.Path); err == nil && journal.UpToDate(file.Path, file.Size, fi.ModTime()) {
			rep.Infof("[%d/%d] %s", idx, total, name)
			rep.Infof("  ⊘ up to date, skipped")
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			return
		}
	}

	out, err := resizeOne(cfg, file)
	if err != nil {
		rep.Infof("[%d/%d] %s", idx, total, name)
		rep.Errorf("  ✗ failed: %v", err)
		mu.Lock()
		result.Failed++
		mu.Unlock()
		return
	}

	rep.Infof("[%d/%d] %s (%dx%d)", idx, total, name, out.SrcWidth, out.SrcHeight)
	rep.Infof("  ✓ resized to %dx%d", out.Width, out.Height)
	rep.Infof("  ✓ size %s → %s", humanize.Bytes(uint64(out.SrcBytes)), humanize.Bytes(uint64(out.OutBytes)))
	rep.Infof("  ✓ saved as %s", filepath.Base(out.OutPath))

	if journal != nil {
		if fi, err := os.Stat(file.Path); err == nil {
			journal.Record(file, fi.ModTime(), out)
		}
	}

	mu.Lock()
	result.Processed++
	mu.Unlock()
}
