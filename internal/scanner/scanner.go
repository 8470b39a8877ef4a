package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/marco/videoSort/internal/magic"
)

// FileInfo represents a discovered video file
type FileInfo struct {
	Path     string
	FileName string
	Size     int64
	FileType magic.FileType
}

// Scanner handles file system scanning for video files
type Scanner struct {
	extensions  []string
	excludeDirs []string
	recursive   bool
}

// New creates a new Scanner instance
func New(extensions []string, excludeDirs []string, recursive bool) *Scanner {
	return &Scanner{
		extensions:  extensions,
		excludeDirs: excludeDirs,
		recursive:   recursive,
	}
}

// IsExcludedDir checks if a directory should be excluded based on exclusion patterns
func (s *Scanner) IsExcludedDir(dirPath string) bool {
	dirName := strings.ToLower(filepath.Base(dirPath))

	for _, pattern := range s.excludeDirs {
		pattern = strings.ToLower(pattern)
		if dirName == pattern || strings.Contains(dirName, pattern) {
			return true
		}
	}
	return false
}

// IsMediaFile checks if a filename has a supported video extension
func (s *Scanner) IsMediaFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, validExt := range s.extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// ScanDirectory walks a directory for video files. Candidates pass the
// extension filter first, then are classified by magic bytes; files whose
// magic is not a known container are skipped.
func (s *Scanner) ScanDirectory(root string) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip directories we can't read
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			if p != root && !s.recursive {
				return filepath.SkipDir
			}
			if s.IsExcludedDir(p) {
				slog.Debug("skipping excluded directory", "path", p)
				return filepath.SkipDir
			}
			return nil
		}

		if !s.IsMediaFile(info.Name()) {
			return nil
		}

		fileType, err := magic.DetectFile(p)
		if err != nil {
			slog.Warn("failed to sniff file type", "path", p, "error", err)
			return nil
		}
		if fileType == magic.Unknown {
			slog.Debug("skipping file with unknown magic", "path", p)
			return nil
		}

		files = append(files, FileInfo{
			Path:     p,
			FileName: info.Name(),
			Size:     info.Size(),
			FileType: fileType,
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}

	return files, nil
}

// ScanAll scans all directories and returns combined results
func (s *Scanner) ScanAll(directories []string) ([]FileInfo, error) {
	var allFiles []FileInfo

	for _, dir := range directories {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Warn("directory does not exist", "path", dir)
			continue
		}

		files, err := s.ScanDirectory(dir)
		if err != nil {
			return nil, err
		}

		allFiles = append(allFiles, files...)
	}

	return allFiles, nil
}
