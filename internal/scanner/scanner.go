// Package scanner walks directory trees and produces usage snapshots.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/setevik/dusnap/internal/snapshot"
)

// Scan walks root and returns a snapshot of its disk usage. Only regular
// files contribute to the total. Unreadable entries are counted as
// skipped rather than failing the scan.
func Scan(ctx context.Context, instanceID, root string) (*snapshot.Snapshot, error) {
	snap := snapshot.New(instanceID, root, time.Now())
	start := time.Now()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			snap.SkippedCount++
			slog.Debug("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			snap.DirCount++
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			snap.SkippedCount++
			return nil
		}
		snap.FileCount++
		snap.TotalBytes += info.Size()
		if info.Size() > snap.LargestBytes {
			snap.LargestBytes = info.Size()
			snap.LargestPath = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	slog.Debug("scan complete",
		"root", root,
		"total", snap.Total(),
		"files", snap.FileCount,
		"skipped", snap.SkippedCount,
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
	return snap, nil
}
