// Package snapshot defines the core data model for disk usage snapshots.
package snapshot

import (
	"time"

	"github.com/google/uuid"
	"github.com/setevik/dusnap/bytesize"
)

// Snapshot records the disk usage of a single root at a point in time.
type Snapshot struct {
	ID           string
	InstanceID   string
	Root         string
	Timestamp    time.Time
	TotalBytes   int64
	FileCount    int64
	DirCount     int64
	LargestPath  string
	LargestBytes int64
	SkippedCount int64
}

// New creates a new Snapshot with a generated UUID and the given timestamp.
func New(instanceID, root string, ts time.Time) *Snapshot {
	return &Snapshot{
		ID:         uuid.NewString(),
		InstanceID: instanceID,
		Root:       root,
		Timestamp:  ts,
	}
}

// Total returns the total usage as a display amount.
func (s *Snapshot) Total() bytesize.Amount {
	return bytesize.FromBytes(s.TotalBytes)
}

// Largest returns the largest file size as a display amount.
func (s *Snapshot) Largest() bytesize.Amount {
	return bytesize.FromBytes(s.LargestBytes)
}
