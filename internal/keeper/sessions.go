package keeper

import (
	"sort"
	"sync"
)

// SessionTracker records which session watches which path, which ephemeral
// nodes a session owns, and how many requests a session has in flight. The
// watch commands (wchs, wchc, wchp), dump and the monitoring counters all
// read from here.
//
// Both watch directions are kept so that wchc and wchp are plain map walks
// instead of inversions under the lock.
type SessionTracker struct {
	mu sync.RWMutex

	watchesBySession map[int64]map[string]struct{}
	watchesByPath    map[string]map[int64]struct{}
	ephemerals       map[int64]map[string]struct{}
	outstanding      map[int64]uint64
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{
		watchesBySession: make(map[int64]map[string]struct{}),
		watchesByPath:    make(map[string]map[int64]struct{}),
		ephemerals:       make(map[int64]map[string]struct{}),
		outstanding:      make(map[int64]uint64),
	}
}

// AddWatch registers a session's interest in a path. Re-adding an existing
// watch is a no-op.
func (s *SessionTracker) AddWatch(sid int64, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchesBySession[sid] == nil {
		s.watchesBySession[sid] = make(map[string]struct{})
	}
	s.watchesBySession[sid][path] = struct{}{}
	if s.watchesByPath[path] == nil {
		s.watchesByPath[path] = make(map[int64]struct{})
	}
	s.watchesByPath[path][sid] = struct{}{}
}

// RemoveWatch drops one session/path watch pair, pruning empty buckets from
// both directions.
func (s *SessionTracker) RemoveWatch(sid int64, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paths := s.watchesBySession[sid]; paths != nil {
		delete(paths, path)
		if len(paths) == 0 {
			delete(s.watchesBySession, sid)
		}
	}
	if sids := s.watchesByPath[path]; sids != nil {
		delete(sids, sid)
		if len(sids) == 0 {
			delete(s.watchesByPath, path)
		}
	}
}

// WatchCount returns the total number of session/path watch pairs.
func (s *SessionTracker) WatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, paths := range s.watchesBySession {
		total += len(paths)
	}
	return total
}

// WatchPathCount returns the number of distinct watched paths.
func (s *SessionTracker) WatchPathCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchesByPath)
}

// SessionsWithWatches returns the number of sessions holding at least one
// watch.
func (s *SessionTracker) SessionsWithWatches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchesBySession)
}

// WatchesBySession returns every session's watched paths, each path list
// sorted.
func (s *SessionTracker) WatchesBySession() map[int64][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64][]string, len(s.watchesBySession))
	for sid, paths := range s.watchesBySession {
		out[sid] = sortedPaths(paths)
	}
	return out
}

// WatchesByPath returns every watched path's sessions, each session list
// sorted.
func (s *SessionTracker) WatchesByPath() map[string][]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]int64, len(s.watchesByPath))
	for path, sids := range s.watchesByPath {
		list := make([]int64, 0, len(sids))
		for sid := range sids {
			list = append(list, sid)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		out[path] = list
	}
	return out
}

// AddEphemeral records an ephemeral node owned by a session.
func (s *SessionTracker) AddEphemeral(sid int64, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ephemerals[sid] == nil {
		s.ephemerals[sid] = make(map[string]struct{})
	}
	s.ephemerals[sid][path] = struct{}{}
}

// RemoveEphemeral drops an ephemeral node record.
func (s *SessionTracker) RemoveEphemeral(sid int64, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paths := s.ephemerals[sid]; paths != nil {
		delete(paths, path)
		if len(paths) == 0 {
			delete(s.ephemerals, sid)
		}
	}
}

// EphemeralCount returns the total number of ephemeral nodes across all
// sessions.
func (s *SessionTracker) EphemeralCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, paths := range s.ephemerals {
		total += len(paths)
	}
	return total
}

// EphemeralsBySession returns every session's ephemeral node paths, sorted.
func (s *SessionTracker) EphemeralsBySession() map[int64][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64][]string, len(s.ephemerals))
	for sid, paths := range s.ephemerals {
		out[sid] = sortedPaths(paths)
	}
	return out
}

// SetOutstanding sets the number of unacknowledged requests for a session;
// zero removes the entry.
func (s *SessionTracker) SetOutstanding(sid int64, n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == 0 {
		delete(s.outstanding, sid)
		return
	}
	s.outstanding[sid] = n
}

// OutstandingBySession returns the per-session unacknowledged request
// counts.
func (s *SessionTracker) OutstandingBySession() map[int64]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]uint64, len(s.outstanding))
	for sid, n := range s.outstanding {
		out[sid] = n
	}
	return out
}

func sortedPaths(set map[string]struct{}) []string {
	list := make([]string, 0, len(set))
	for p := range set {
		list = append(list, p)
	}
	sort.Strings(list)
	return list
}
