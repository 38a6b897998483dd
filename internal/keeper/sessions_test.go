package keeper

import (
	"reflect"
	"testing"
)

func TestSessionTrackerWatches(t *testing.T) {
	s := NewSessionTracker()
	s.AddWatch(1, "/a")
	s.AddWatch(1, "/b")
	s.AddWatch(2, "/a")
	s.AddWatch(2, "/a") // duplicate is a no-op

	if got := s.WatchCount(); got != 3 {
		t.Errorf("WatchCount = %d, want 3", got)
	}
	if got := s.WatchPathCount(); got != 2 {
		t.Errorf("WatchPathCount = %d, want 2", got)
	}
	if got := s.SessionsWithWatches(); got != 2 {
		t.Errorf("SessionsWithWatches = %d, want 2", got)
	}

	bySession := s.WatchesBySession()
	if !reflect.DeepEqual(bySession[1], []string{"/a", "/b"}) {
		t.Errorf("WatchesBySession[1] = %v", bySession[1])
	}
	byPath := s.WatchesByPath()
	if !reflect.DeepEqual(byPath["/a"], []int64{1, 2}) {
		t.Errorf("WatchesByPath[/a] = %v", byPath["/a"])
	}
}

func TestSessionTrackerRemoveWatchPrunes(t *testing.T) {
	s := NewSessionTracker()
	s.AddWatch(1, "/a")
	s.AddWatch(2, "/a")

	s.RemoveWatch(1, "/a")
	if got := s.SessionsWithWatches(); got != 1 {
		t.Errorf("SessionsWithWatches after remove = %d, want 1", got)
	}
	if got := s.WatchPathCount(); got != 1 {
		t.Errorf("WatchPathCount after remove = %d, want 1", got)
	}

	s.RemoveWatch(2, "/a")
	if got := s.WatchCount(); got != 0 {
		t.Errorf("WatchCount after removing all = %d, want 0", got)
	}
	if got := s.WatchPathCount(); got != 0 {
		t.Errorf("path bucket not pruned, WatchPathCount = %d", got)
	}

	// Removing a watch that was never added must not panic.
	s.RemoveWatch(9, "/nope")
}

func TestSessionTrackerEphemerals(t *testing.T) {
	s := NewSessionTracker()
	s.AddEphemeral(10, "/locks/b")
	s.AddEphemeral(10, "/locks/a")
	s.AddEphemeral(20, "/leases/x")

	if got := s.EphemeralCount(); got != 3 {
		t.Errorf("EphemeralCount = %d, want 3", got)
	}
	bySession := s.EphemeralsBySession()
	if !reflect.DeepEqual(bySession[10], []string{"/locks/a", "/locks/b"}) {
		t.Errorf("EphemeralsBySession[10] = %v, want sorted paths", bySession[10])
	}

	s.RemoveEphemeral(20, "/leases/x")
	if _, ok := s.EphemeralsBySession()[20]; ok {
		t.Error("session 20 not pruned after losing its last ephemeral")
	}
}

func TestSessionTrackerOutstanding(t *testing.T) {
	s := NewSessionTracker()
	s.SetOutstanding(1, 3)
	s.SetOutstanding(2, 1)
	s.SetOutstanding(2, 0) // zero removes the entry

	got := s.OutstandingBySession()
	want := map[int64]uint64{1: 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OutstandingBySession = %v, want %v", got, want)
	}
}
