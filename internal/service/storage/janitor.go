package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// minSweepInterval bounds how often stale uploads are looked for.
const minSweepInterval = time.Minute

// RunJanitor periodically removes temporary uploads older than maxAge until ctx is done.
// Uploads are normally removed right after processing; this catches the ones left
// behind by a crash.
func (s *ResultStore) RunJanitor(ctx context.Context, maxAge time.Duration) {
	interval := maxAge / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.SweepUploads(now, maxAge); n > 0 {
				s.logger.Info("Removed %d stale uploads", n)
			}
		}
	}
}

// SweepUploads deletes input_* files last modified before now-maxAge and
// returns how many were removed.
func (s *ResultStore) SweepUploads(now time.Time, maxAge time.Duration) int {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		s.logger.Error("Error reading upload directory: %v", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "input_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.uploadDir, entry.Name())); err != nil {
			s.logger.Warning("Could not remove stale upload %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed
}
