package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	VideoExtensions = mapset.NewSet(".mov", ".mp4", ".m4v", ".mkv", ".webm", ".avi")
	AudioExtensions = mapset.NewSet(".m4a", ".mp3", ".aac", ".wav", ".flac", ".ogg", ".caf")
)

const maxClaimAttempts = 1000

const (
	mergeFilenameDate = "January 2, 2006"
	mergeFilenameTime = "3:04 PM"
)

// EnsureDirs creates directories if they do not exist
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MergeOutputPath returns the export destination for a merge started at now,
// e.g. "mergeVideo-October 18, 2026 3:04 PM.mov". Two merges within the same
// minute display resolve to the same name; ClaimPath disambiguates them.
func MergeOutputPath(documentsDir string, now time.Time) string {
	name := fmt.Sprintf("mergeVideo-%s %s.mov", now.Format(mergeFilenameDate), now.Format(mergeFilenameTime))
	return filepath.Join(documentsDir, name)
}

// NumberedPath returns path with " (n)" inserted before the extension.
// n below 2 returns path unchanged.
func NumberedPath(path string, n int) string {
	if n < 2 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(path, ext), n, ext)
}

// ClaimPath creates an empty placeholder at path, or at the first free
// NumberedPath of it, and returns the path it created. The placeholder keeps
// concurrent writers from being handed the same file.
func ClaimPath(path string) (string, error) {
	for n := 1; n <= maxClaimAttempts; n++ {
		candidate := NumberedPath(path, n)
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to claim %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(candidate)
			return "", fmt.Errorf("failed to claim %s: %w", candidate, err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", path, maxClaimAttempts)
}

// ListMediaFiles returns regular files in dir whose extension is in exts,
// sorted by name. Hidden files are skipped.
func ListMediaFiles(dir string, exts mapset.Set[string]) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !exts.Contains(strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// CopyFile copies src to dst, creating dst's directory.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to write file: %w", err)
	}

	return out.Close()
}

// CleanupOlderThan removes regular files in dir last modified before cutoff
// and returns how many were removed.
func CleanupOlderThan(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// ScheduleCleanup periodically removes files older than maxAge from dir
// until stop is closed.
func ScheduleCleanup(dir string, maxAge time.Duration, stop <-chan struct{}) {
	if maxAge <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(maxAge / 4)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				n, err := CleanupOlderThan(dir, now.Add(-maxAge))
				if err != nil {
					log.Printf("[Cleanup] %s: %v", dir, err)
				} else if n > 0 {
					log.Printf("[Cleanup] removed %d files from %s", n, dir)
				}
			}
		}
	}()
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetFileSize returns file size in bytes
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
