package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupStale removes plan files in the work dir older than maxAge and
// returns how many were deleted. Plan files of runs still in flight are
// younger than any sane maxAge and are left alone.
func (slf *Runner) CleanupStale(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(slf.cfg.WorkDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read engine work dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), planFilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(slf.cfg.WorkDir, entry.Name())
		if err := os.Remove(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		removed++
	}

	if removed > 0 {
		slf.logger.Info().Int("removed", removed).Dur("maxAge", maxAge).Msg("Removed stale plan files")
	}
	return removed, errors.Join(errs...)
}
