package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg := &Config{
		Quality:    85,
		KeepAspect: true,
		Workers:    1,
	}

	sizeStr := "800x600"
	noAspect := false
	noTUI := false

	// Long and short spellings share one variable.
	flag.StringVar(&cfg.OutputDir, "output", "", "Output folder (default: <input>/resized)")
	flag.StringVar(&cfg.OutputDir, "o", "", "Shorthand for -output")
	flag.StringVar(&sizeStr, "size", sizeStr, "Target size as WIDTHxHEIGHT")
	flag.StringVar(&sizeStr, "s", sizeStr, "Shorthand for -size")
	flag.StringVar(&cfg.OutputFormat, "format", "", "Convert images to jpg|jpeg|png|gif|bmp|webp (default: keep original)")
	flag.StringVar(&cfg.OutputFormat, "f", "", "Shorthand for -format")
	flag.IntVar(&cfg.Quality, "quality", cfg.Quality, "Quality for lossy output (1-100)")
	flag.IntVar(&cfg.Quality, "q", cfg.Quality, "Shorthand for -quality")
	flag.BoolVar(&noAspect, "no-aspect-ratio", false, "Do not maintain aspect ratio (may distort)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of parallel file workers")
	flag.IntVar(&cfg.FileLimit, "limit", 0, "Process at most N files (0 = no limit)")
	flag.BoolVar(&cfg.SkipUnchanged, "skip-unchanged", false, "Skip files already resized with the same settings")
	flag.BoolVar(&cfg.KeepTimes, "keep-times", false, "Give outputs the source capture/modification time")
	flag.BoolVar(&noTUI, "no-tui", false, "Disable TUI, use simple CLI output")

	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	cfg.InputDir = flag.Arg(0)
	cfg.KeepAspect = !noAspect
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)

	var err error
	cfg.TargetWidth, cfg.TargetHeight, err = parseSize(sizeStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-resizer: %v\n", err)
		os.Exit(1)
	}

	info, err := os.Stat(cfg.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-resizer: input folder %q does not exist\n", cfg.InputDir)
		os.Exit(1)
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "image-resizer: %q is not a directory\n", cfg.InputDir)
		os.Exit(1)
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(cfg.InputDir, "resized")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "image-resizer: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if noTUI {
		os.Exit(runCLI(ctx, cfg))
	}
	os.Exit(runTUI(ctx, cfg))
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: image-resizer [flags] <input-folder>\n\n")
	fmt.Fprintf(os.Stderr, "Batch-resize and convert every supported image in a folder.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

// parseSize parses a WIDTHxHEIGHT string like "800x600".
func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("size must look like 800x600, got %q", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad width in size %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad height in size %q", s)
	}
	return w, h, nil
}

func runCLI(ctx context.Context, cfg *Config) int {
	fmt.Println("Batch Image Resizer")
	fmt.Println("===================")
	fmt.Println()

	fmt.Println("Configuration:")
	fmt.Printf("  Input:       %s\n", cfg.InputDir)
	fmt.Printf("  Output:      %s\n", cfg.OutputDir)
	fmt.Printf("  Target size: %dx%d\n", cfg.TargetWidth, cfg.TargetHeight)
	fmt.Printf("  Keep aspect: %t\n", cfg.KeepAspect)
	if cfg.OutputFormat != "" {
		fmt.Printf("  Format:      %s\n", cfg.OutputFormat)
	}
	if lossyFormats[cfg.OutputFormat] {
		fmt.Printf("  Quality:     %d\n", cfg.Quality)
	}
	if cfg.Workers > 1 {
		fmt.Printf("  Workers:     %d\n", cfg.Workers)
	}
	if cfg.FileLimit > 0 {
		fmt.Printf("  File limit:  %d (testing mode)\n", cfg.FileLimit)
	}
	fmt.Println()

	var journal *Journal
	if cfg.SkipUnchanged {
		j, err := OpenJournal(cfg.OutputDir, cfg.Fingerprint())
		if err != nil {
			fmt.Printf("Warning: skip journal disabled: %v\n", err)
		} else {
			journal = j
			defer journal.Close()
			fmt.Printf("Journal: %d previous resize(s) with these settings\n\n", journal.Stats())
		}
	}

	result, err := RunBatch(ctx, cfg, journal, consoleReporter{}, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted")
			return 1
		}
		fmt.Fprintf(os.Stderr, "image-resizer: %v\n", err)
		return 1
	}

	printSummary(cfg, result)
	return 0
}

func printSummary(cfg *Config, result *BatchResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("PROCESSING COMPLETE")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("✓ Successfully processed: %d image(s)\n", result.Processed)
	if result.Failed > 0 {
		fmt.Printf("✗ Failed to process: %d image(s)\n", result.Failed)
	}
	if result.Skipped > 0 {
		fmt.Printf("⊘ Skipped: %d image(s)\n", result.Skipped)
	}
	fmt.Printf("Output folder: %s\n", cfg.OutputDir)
}

func runTUI(ctx context.Context, cfg *Config) int {
	p := tea.NewProgram(initialModel(ctx, cfg), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if fm, ok := m.(model); ok {
		if fm.err != nil || fm.interrupted {
			return 1
		}
	}
	return 0
}
