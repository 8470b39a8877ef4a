package scanner

import (
	"context"
	"sync"
	"sync/atomic"
)

// ProcessResult holds the outcome of processing a single file.
type ProcessResult struct {
	File       FileInfo
	TargetPath string // final library path, empty when skipped or failed
	Err        error
}

// ProcessFunc processes a single FileInfo and returns the target path the
// file ended up at, or an error.
type ProcessFunc func(ctx context.Context, file FileInfo) (targetPath string, err error)

// TargetGuard provides thread-safe target-path deduplication. Two source
// files can resolve to the same library name; only the first caller for a
// given target wins.
type TargetGuard struct {
	mu      sync.Mutex
	claimed map[string]bool
}

// NewTargetGuard creates a new TargetGuard.
func NewTargetGuard() *TargetGuard {
	return &TargetGuard{claimed: make(map[string]bool)}
}

// TryClaim attempts to claim a target path. Returns true if the path was
// successfully claimed (first caller wins), false if already taken.
func (tg *TargetGuard) TryClaim(target string) bool {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	if tg.claimed[target] {
		return false
	}
	tg.claimed[target] = true
	return true
}

// ProcessFilesConcurrently fans out file processing across N workers. Each
// file is handled by exactly one worker with no state shared between
// files. The processedCount pointer is atomically incremented after each
// file completes (success or failure), enabling external progress
// reporting. Results are returned in no guaranteed order.
func ProcessFilesConcurrently(
	ctx context.Context,
	files []FileInfo,
	fn ProcessFunc,
	workers int,
	processedCount *int64,
) []ProcessResult {
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan FileInfo, len(files))
	results := make(chan ProcessResult, len(files))

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				// Check for cancellation before processing
				if ctx.Err() != nil {
					results <- ProcessResult{File: file, Err: ctx.Err()}
					atomic.AddInt64(processedCount, 1)
					continue
				}

				target, err := fn(ctx, file)
				results <- ProcessResult{
					File:       file,
					TargetPath: target,
					Err:        err,
				}
				atomic.AddInt64(processedCount, 1)
			}
		}()
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []ProcessResult
	for r := range results {
		out = append(out, r)
	}
	return out
}
