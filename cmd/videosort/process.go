package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marco/videoSort/internal/fsutil"
	"github.com/marco/videoSort/internal/lookup"
	"github.com/marco/videoSort/internal/magic"
	"github.com/marco/videoSort/internal/media"
	"github.com/marco/videoSort/internal/mkv"
	"github.com/marco/videoSort/internal/scanner"
)

// processor carries the per-run settings a worker needs to place one file
// into the library.
type processor struct {
	toDirectory string
	sameVolume  bool
	deleteOld   bool
	backup      bool
	dryRun      bool
	lookup      *lookup.Client // nil when lookup is disabled
	guard       *scanner.TargetGuard
}

// process relocates a single video file into the library. For Matroska
// files the title and reserved tags are injected during the copy; files
// that arrive at the target by rename (or were already there) get an
// in-place metadata rewrite afterwards. Returns the library path the file
// ended up at.
func (p *processor) process(ctx context.Context, file scanner.FileInfo) (string, error) {
	v, err := media.NewVideo(file.Path, file.FileType)
	if err != nil {
		return "", err
	}

	if v.FileType == magic.Matroska {
		meta, err := mkv.ExtractFile(v.Path)
		switch {
		case err == nil:
			v.SetMetadata(meta)
		case errors.Is(err, mkv.ErrIncompleteMetadata):
			// Fall back to the filename quality marker
			slog.Warn("container metadata incomplete, using filename hints", "file", file.FileName)
		default:
			return "", fmt.Errorf("failed to inspect %s: %w", file.FileName, err)
		}
	}

	if p.lookup != nil {
		if err := p.lookup.Enrich(ctx, v); err != nil {
			slog.Warn("identity lookup failed, using filename data", "file", file.FileName, "error", err)
		}
	}

	target := filepath.Join(p.toDirectory, v.GenerateFileName())

	if !p.guard.TryClaim(target) {
		return "", fmt.Errorf("another source file already maps to %s", filepath.Base(target))
	}

	if p.dryRun {
		fmt.Printf("Would move: %s -> %s\n", v.Path, target)
		return target, nil
	}

	atTarget := false
	if _, err := os.Stat(target); err == nil {
		slog.Info("target already exists, skipping copy", "target", filepath.Base(target))
		atTarget = true
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat target: %w", err)
	}

	metadataWritten := false
	if !atTarget {
		if p.sameVolume && p.deleteOld {
			// Instant move, metadata is rewritten in place below
			if err := os.Rename(v.Path, target); err != nil {
				return "", fmt.Errorf("failed to move file: %w", err)
			}
		} else {
			if v.FileType == magic.Matroska {
				if err := injectInto(v, v.Path, target); err != nil {
					return "", err
				}
				metadataWritten = true
			} else {
				if err := fsutil.CopyFile(v.Path, target); err != nil {
					return "", err
				}
			}
			if p.deleteOld {
				if err := os.Remove(v.Path); err != nil {
					return "", fmt.Errorf("failed to delete source: %w", err)
				}
			}
		}
	}

	if !metadataWritten && v.FileType == magic.Matroska {
		if err := p.rewriteInPlace(v, target); err != nil {
			return "", err
		}
	}

	return target, nil
}

// rewriteInPlace injects metadata into a file already at its library path.
// The rewrite goes through a sibling temp file; the untouched original is
// kept as a .bak unless originals are being deleted.
func (p *processor) rewriteInPlace(v *media.Video, target string) error {
	slog.Debug("updating container metadata", "target", filepath.Base(target))

	tmpPath := target + ".with_meta"
	if err := injectInto(v, target, tmpPath); err != nil {
		return err
	}

	if p.backup && !p.deleteOld {
		if err := os.Rename(target, target+".bak"); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to back up original: %w", err)
		}
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to replace target: %w", err)
	}
	return nil
}

// injectInto streams src into a newly created dst, merging in the video's
// title and tag dictionary. The partially written dst is removed on error.
func injectInto(v *media.Video, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}

	if err := mkv.Inject(in, out, v.TagTitle(), v.TagDictionary()); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to finish target: %w", err)
	}
	return nil
}
