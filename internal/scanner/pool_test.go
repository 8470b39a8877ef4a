package scanner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTargetGuard_TryClaim(t *testing.T) {
	tg := NewTargetGuard()

	// First claim should succeed
	if !tg.TryClaim("/library/The Matrix-1080p.mkv") {
		t.Error("expected first claim to succeed")
	}

	// Second claim of same target should fail
	if tg.TryClaim("/library/The Matrix-1080p.mkv") {
		t.Error("expected duplicate claim to fail")
	}

	// Different target should succeed
	if !tg.TryClaim("/library/Inception-2160p.mkv") {
		t.Error("expected different target claim to succeed")
	}
}

func TestTargetGuard_ConcurrentAccess(t *testing.T) {
	tg := NewTargetGuard()
	target := "/library/Show Name-S01E01-720p.mkv"

	const goroutines = 100
	var successes int64
	var wg sync.WaitGroup

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if tg.TryClaim(target) {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("expected exactly 1 successful claim, got %d", successes)
	}
}

func TestProcessFilesConcurrently_BasicProcessing(t *testing.T) {
	files := []FileInfo{
		{FileName: "movie1.mkv", Path: "/in/movie1.mkv"},
		{FileName: "movie2.mkv", Path: "/in/movie2.mkv"},
		{FileName: "movie3.mkv", Path: "/in/movie3.mkv"},
	}

	var processedCount int64
	processFn := func(ctx context.Context, file FileInfo) (string, error) {
		return "/out/" + file.FileName, nil
	}

	results := ProcessFilesConcurrently(
		context.Background(),
		files,
		processFn,
		2,
		&processedCount,
	)

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
	if processedCount != 3 {
		t.Errorf("expected processedCount=3, got %d", processedCount)
	}

	// All should succeed
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("unexpected error for %s: %v", r.File.FileName, r.Err)
		}
		if r.TargetPath != "/out/"+r.File.FileName {
			t.Errorf("expected target /out/%s, got %s", r.File.FileName, r.TargetPath)
		}
	}
}

func TestProcessFilesConcurrently_HandlesErrors(t *testing.T) {
	files := []FileInfo{
		{FileName: "good.mkv"},
		{FileName: "bad.mkv"},
	}

	var processedCount int64
	processFn := func(ctx context.Context, file FileInfo) (string, error) {
		if file.FileName == "bad.mkv" {
			return "", fmt.Errorf("cannot parse file name")
		}
		return "/out/" + file.FileName, nil
	}

	results := ProcessFilesConcurrently(
		context.Background(),
		files,
		processFn,
		2,
		&processedCount,
	)

	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}

	var errCount, okCount int
	for _, r := range results {
		if r.Err != nil {
			errCount++
		} else {
			okCount++
		}
	}

	if errCount != 1 || okCount != 1 {
		t.Errorf("expected 1 error and 1 success, got %d errors and %d successes", errCount, okCount)
	}
}

func TestProcessFilesConcurrently_ContextCancellation(t *testing.T) {
	files := make([]FileInfo, 20)
	for i := range files {
		files[i] = FileInfo{FileName: fmt.Sprintf("movie%d.mkv", i)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	var processedCount int64
	var started int64

	processFn := func(ctx context.Context, file FileInfo) (string, error) {
		count := atomic.AddInt64(&started, 1)
		// Cancel after a few have started
		if count == 3 {
			cancel()
		}
		// Simulate work
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
		}
		return "/out/" + file.FileName, nil
	}

	results := ProcessFilesConcurrently(ctx, files, processFn, 2, &processedCount)

	// All files should be accounted for (some with ctx error, some processed)
	if len(results) != 20 {
		t.Errorf("expected 20 results, got %d", len(results))
	}

	// At least some should have context cancelled errors
	var cancelledCount int
	for _, r := range results {
		if r.Err == context.Canceled {
			cancelledCount++
		}
	}
	if cancelledCount == 0 {
		t.Log("warning: no cancelled results detected (timing-dependent)")
	}
}

func TestProcessFilesConcurrently_EmptyInput(t *testing.T) {
	var processedCount int64
	processFn := func(ctx context.Context, file FileInfo) (string, error) {
		t.Error("process function should not be called for empty input")
		return "", nil
	}

	results := ProcessFilesConcurrently(context.Background(), nil, processFn, 5, &processedCount)

	if len(results) != 0 {
		t.Errorf("expected 0 results for nil input, got %d", len(results))
	}
	if processedCount != 0 {
		t.Errorf("expected processedCount=0, got %d", processedCount)
	}
}

func TestProcessFilesConcurrently_ZeroWorkers(t *testing.T) {
	files := []FileInfo{{FileName: "test.mkv"}}

	var processedCount int64
	processFn := func(ctx context.Context, file FileInfo) (string, error) {
		return "/out/" + file.FileName, nil
	}

	// workers=0 should be clamped to 1
	results := ProcessFilesConcurrently(context.Background(), files, processFn, 0, &processedCount)

	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}
