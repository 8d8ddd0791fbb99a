// Package report renders usage reports and limit alerts for snapshots.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/setevik/dusnap/bytesize"
	"github.com/setevik/dusnap/internal/snapshot"
)

// Usage pairs the latest snapshot of a root with its predecessor, if any.
type Usage struct {
	Root   string
	Latest *snapshot.Snapshot
	Prev   *snapshot.Snapshot
}

// Delta returns the byte growth since the previous snapshot, or 0 if
// there is no previous snapshot.
func (u *Usage) Delta() int64 {
	if u.Prev == nil {
		return 0
	}
	return u.Latest.TotalBytes - u.Prev.TotalBytes
}

// Build assembles per-root usage entries from recent snapshots, newest
// first per root, sorted by root.
func Build(recent map[string][]*snapshot.Snapshot) []Usage {
	usages := make([]Usage, 0, len(recent))
	for root, snaps := range recent {
		if len(snaps) == 0 {
			continue
		}
		u := Usage{Root: root, Latest: snaps[0]}
		if len(snaps) > 1 {
			u.Prev = snaps[1]
		}
		usages = append(usages, u)
	}
	sort.Slice(usages, func(i, j int) bool {
		return usages[i].Root < usages[j].Root
	})
	return usages
}

// FormatReport formats usage entries as human-readable text suitable for
// stdout, with byte amounts rendered at the given precision.
func FormatReport(instanceID string, usages []Usage, prec int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s ===\n", instanceID)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Local().Format("2006-01-02 15:04:05"))

	if len(usages) == 0 {
		b.WriteString("No snapshots recorded yet.\n")
		return b.String()
	}

	width := 0
	for _, u := range usages {
		if len(u.Root) > width {
			width = len(u.Root)
		}
	}

	var total int64
	for _, u := range usages {
		s := u.Latest
		fmt.Fprintf(&b, "%-*s  %s", width, u.Root, s.Total().Format(prec))
		if u.Prev != nil {
			fmt.Fprintf(&b, "  (%s since %s)",
				FormatDelta(u.Delta(), prec),
				u.Prev.Timestamp.Local().Format("Jan 02"))
		}
		fmt.Fprintf(&b, "  %d files\n", s.FileCount)
		if s.LargestPath != "" {
			fmt.Fprintf(&b, "%-*s  largest: %s (%s)\n", width, "", s.LargestPath, s.Largest().Format(prec))
		}
		total += s.TotalBytes
	}

	fmt.Fprintf(&b, "\n%-*s  %s\n", width, "Total:", bytesize.FromBytes(total).Format(prec))
	return b.String()
}

// FormatDelta renders a signed byte difference, e.g. "+1.5 Mb" or
// "-200.0 Kb". The sign is handled separately so the magnitude can go
// through unit auto-detection.
func FormatDelta(delta int64, prec int) string {
	sign := "+"
	if delta < 0 {
		sign = "-"
		delta = -delta
	}
	return sign + bytesize.FromBytes(delta).Format(prec)
}

// FormatAlertTitle builds the ntfy notification title for a limit alert.
func FormatAlertTitle(s *snapshot.Snapshot) string {
	return fmt.Sprintf("\U0001f4be [%s] %s over limit: %s", s.InstanceID, s.Root, s.Total())
}

// FormatAlertBody builds the ntfy notification body for a limit alert.
func FormatAlertBody(s *snapshot.Snapshot, limit int64, prec int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Host: %s\n", s.InstanceID)
	fmt.Fprintf(&b, "Time: %s\n", s.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Root: %s\n", s.Root)
	fmt.Fprintf(&b, "Usage: %s of %s limit (%s)\n",
		s.Total().Format(prec),
		bytesize.FromBytes(limit).Format(prec),
		FormatDelta(s.TotalBytes-limit, prec))
	fmt.Fprintf(&b, "Files: %d\n", s.FileCount)

	if s.LargestPath != "" {
		fmt.Fprintf(&b, "\nLargest file: %s (%s)\n", s.LargestPath, s.Largest().Format(prec))
	}

	return b.String()
}
