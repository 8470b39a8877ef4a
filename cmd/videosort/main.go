package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/marco/videoSort/internal/config"
	"github.com/marco/videoSort/internal/fsutil"
	"github.com/marco/videoSort/internal/lookup"
	"github.com/marco/videoSort/internal/lookup/cache"
	"github.com/marco/videoSort/internal/scanner"
)

var (
	configPath = flag.String("config", "", "Path to configuration file (optional)")
	dryRun     = flag.Bool("dry-run", false, "Show what would be done without actually doing it")
	deleteOld  = flag.Bool("delete", false, "Delete source files after they are placed in the library")
	noRecurse  = flag.Bool("no-recurse", false, "Do not descend into subdirectories of the source")
	watchMode  = flag.Bool("watch", false, "Keep running and process files as they appear in the source")
	verbose    = flag.Bool("verbose", false, "Show detailed logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Command line flags override the config file
	if *deleteOld {
		cfg.Library.DeleteOriginal = true
	}
	if *noRecurse {
		recursive := false
		cfg.Scanner.Recursive = &recursive
	}
	if *watchMode {
		cfg.Watch.Enabled = true
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving working directory: %v\n", err)
		os.Exit(1)
	}
	fromDirectory := cwd
	toDirectory := cwd
	if flag.NArg() > 0 {
		fromDirectory = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		toDirectory = flag.Arg(1)
	}

	sameVolume, err := fsutil.SameVolume(fromDirectory, toDirectory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error comparing volumes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Moving videos from %s -> %s\n", fromDirectory, toDirectory)
	fmt.Printf("  Same volume: %v\n", sameVolume)
	fmt.Printf("  Delete old:  %v\n", cfg.Library.DeleteOriginal)
	fmt.Printf("  Dry run:     %v\n", *dryRun)
	fmt.Printf("  Recursion:   %v\n", *cfg.Scanner.Recursive)

	var lookupClient *lookup.Client
	if cfg.Lookup.Enabled {
		lookupCache, err := cache.NewSQLiteCache(cfg.Lookup.CachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening lookup cache: %v\n", err)
			os.Exit(1)
		}
		defer lookupCache.Close()

		lookupClient = lookup.NewClient(lookup.ClientConfig{
			APIKey:           cfg.Lookup.APIKey,
			Language:         cfg.Lookup.Language,
			RateLimitDelayMs: cfg.Lookup.RateLimitDelayMs,
			MaxAttempts:      cfg.Lookup.MaxAttempts,
			InitialBackoffMs: cfg.Lookup.InitialBackoffMs,
			Cache:            lookupCache,
			CacheTTLDays:     cfg.Lookup.CacheTTLDays,
		})
	}

	proc := &processor{
		toDirectory: toDirectory,
		sameVolume:  sameVolume,
		deleteOld:   cfg.Library.DeleteOriginal,
		backup:      *cfg.Library.BackupOriginal,
		dryRun:      *dryRun,
		lookup:      lookupClient,
		guard:       scanner.NewTargetGuard(),
	}

	if cfg.Watch.Enabled {
		if err := runWatch(cfg, fromDirectory, proc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runScan(cfg, fromDirectory, proc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runScan performs a single pass over the source directory.
func runScan(cfg *config.Config, fromDirectory string, proc *processor) error {
	s := scanner.New(cfg.Scanner.Extensions, cfg.Scanner.ExcludeDirs, *cfg.Scanner.Recursive)

	fmt.Println("Scanning for video files...")
	files, err := s.ScanDirectory(fromDirectory)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", fromDirectory, err)
	}
	fmt.Printf("Found %d video files\n", len(files))
	if len(files) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	start := time.Now()

	// Progress reporter
	var processedCount int64
	totalFiles := int64(len(files))
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				current := atomic.LoadInt64(&processedCount)
				if current > 0 && current < totalFiles {
					slog.Info("progress", "processed", current, "total", totalFiles,
						"percent", fmt.Sprintf("%.0f%%", float64(current)/float64(totalFiles)*100))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	results := scanner.ProcessFilesConcurrently(ctx, files, proc.process, cfg.Scanner.Workers, &processedCount)
	cancel()
	<-progressDone

	successCount := 0
	errorCount := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  ❌ %s: %v\n", r.File.FileName, r.Err)
			errorCount++
			continue
		}
		fmt.Printf("  ✓ %s -> %s\n", r.File.FileName, r.TargetPath)
		successCount++
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Total files found: %d\n", len(files))
	fmt.Printf("  Successful: %d\n", successCount)
	if errorCount > 0 {
		fmt.Printf("  Errors: %d\n", errorCount)
	}
	fmt.Printf("  Elapsed: %s\n", time.Since(start).Round(time.Millisecond))

	if errorCount > 0 {
		return fmt.Errorf("%d of %d files failed", errorCount, len(files))
	}
	return nil
}
