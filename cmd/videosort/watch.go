package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marco/videoSort/internal/config"
	"github.com/marco/videoSort/internal/scanner"
)

// runWatch processes the existing contents of the source directory, then
// keeps watching it and handles new files as their writes settle.
func runWatch(cfg *config.Config, fromDirectory string, proc *processor) error {
	if err := runScan(cfg, fromDirectory, proc); err != nil {
		// An initial-pass failure is not fatal for watch mode
		fmt.Fprintf(os.Stderr, "Initial scan: %v\n", err)
	}

	handler := func(file scanner.FileInfo) error {
		target, err := proc.process(context.Background(), file)
		if err != nil {
			return err
		}
		fmt.Printf("  ✓ %s -> %s\n", file.FileName, target)
		return nil
	}

	w, err := scanner.NewWatcher(scanner.WatcherConfig{
		Directories:   []string{fromDirectory},
		Extensions:    cfg.Scanner.Extensions,
		ExcludeDirs:   cfg.Scanner.ExcludeDirs,
		DebounceDelay: time.Duration(cfg.Watch.DebounceSeconds) * time.Second,
		Recursive:     *cfg.Scanner.Recursive,
	}, handler)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Printf("Watching %s for new files (Ctrl-C to stop)\n", fromDirectory)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("Shutting down...")
	return w.Stop()
}
