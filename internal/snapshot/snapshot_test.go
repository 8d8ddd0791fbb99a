package snapshot

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	ts := time.Date(2026, 2, 19, 14, 0, 0, 0, time.UTC)
	s := New("myhost", "/home", ts)

	if s.ID == "" {
		t.Error("ID should not be empty")
	}
	if s.InstanceID != "myhost" {
		t.Errorf("InstanceID = %q, want %q", s.InstanceID, "myhost")
	}
	if s.Root != "/home" {
		t.Errorf("Root = %q, want %q", s.Root, "/home")
	}
	if s.Timestamp != ts {
		t.Errorf("Timestamp = %v, want %v", s.Timestamp, ts)
	}
}

func TestNewUniqueIDs(t *testing.T) {
	ts := time.Now()
	s1 := New("host", "/a", ts)
	s2 := New("host", "/a", ts)
	if s1.ID == s2.ID {
		t.Error("two snapshots should have different IDs")
	}
}

func TestTotalAmount(t *testing.T) {
	s := New("host", "/home", time.Now())
	s.TotalBytes = 32 * 1024

	if got := s.Total().String(); got != "32.0 Kb" {
		t.Errorf("Total() = %q, want %q", got, "32.0 Kb")
	}
}

func TestLargestAmount(t *testing.T) {
	s := New("host", "/home", time.Now())
	s.LargestBytes = 3 * 1024 * 1024 * 1024

	if got := s.Largest().String(); got != "3.0 Gb" {
		t.Errorf("Largest() = %q, want %q", got, "3.0 Gb")
	}
}
