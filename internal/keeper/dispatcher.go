// Package keeper holds the dispatcher: the live operational state of the
// coordination server that the administrative four-letter commands report
// on. It owns the global request counters, the connection table, the
// watch/session tracker and the storage accounting, and exposes them
// through read accessors that are safe for concurrent use.
//
// The consensus engine and the client-facing request pipeline feed state in
// through the mutators; the admin layer only ever reads (plus the two
// explicit statistic resets).
package keeper

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Role is the server's position in the cluster.
type Role string

const (
	RoleLeader     Role = "leader"
	RoleFollower   Role = "follower"
	RoleStandalone Role = "standalone"
)

// ConfigEntry is one effective configuration setting, reported by the conf
// command in slice order.
type ConfigEntry struct {
	Key   string
	Value string
}

// LeaderInfo carries the counters only a leader exposes.
type LeaderInfo struct {
	Followers       uint32
	SyncedFollowers uint32
	PendingSyncs    uint32
}

// Options configures a Dispatcher at construction.
type Options struct {
	Version     string
	SnapshotDir string
	LogDir      string
	Config      []ConfigEntry
}

// Dispatcher is the concrete collaborator behind the admin command layer.
type Dispatcher struct {
	version string
	runID   string
	started time.Time
	env     Environment

	role       atomic.Value // Role
	readOnly   atomic.Bool
	leaderInfo atomic.Value // LeaderInfo

	stats    *ServerStats
	conns    *ConnTable
	sessions *SessionTracker
	storage  *StorageInfo

	config []ConfigEntry
}

// New builds a dispatcher in the standalone role with zeroed counters.
func New(opts Options) *Dispatcher {
	runID := uuid.NewString()
	d := &Dispatcher{
		version:  opts.Version,
		runID:    runID,
		started:  time.Now(),
		env:      collectEnvironment(opts.Version, runID),
		stats:    NewServerStats(),
		conns:    NewConnTable(),
		sessions: NewSessionTracker(),
		storage:  NewStorageInfo(opts.SnapshotDir, opts.LogDir),
		config:   opts.Config,
	}
	d.role.Store(RoleStandalone)
	d.leaderInfo.Store(LeaderInfo{})
	return d
}

func (d *Dispatcher) Version() string { return d.version }
func (d *Dispatcher) RunID() string { return d.runID }

func (d *Dispatcher) Uptime() time.Duration { return time.Since(d.started) }

func (d *Dispatcher) Role() Role { return d.role.Load().(Role) }

// SetRole is called by the consensus layer on every role transition.
func (d *Dispatcher) SetRole(role Role) { d.role.Store(role) }

func (d *Dispatcher) ReadOnly() bool { return d.readOnly.Load() }
func (d *Dispatcher) SetReadOnly(ro bool) { d.readOnly.Store(ro) }

// SetLeaderInfo updates the leader-only counters; meaningful only while the
// role is leader.
func (d *Dispatcher) SetLeaderInfo(info LeaderInfo) { d.leaderInfo.Store(info) }

// LeaderInfo returns the leader-only counters and whether this server is
// currently the leader.
func (d *Dispatcher) LeaderInfo() (LeaderInfo, bool) {
	if d.Role() != RoleLeader {
		return LeaderInfo{}, false
	}
	return d.leaderInfo.Load().(LeaderInfo), true
}

// Stats exposes the global packet/latency counters. The srst command resets
// the latency accumulators through this handle.
func (d *Dispatcher) Stats() *ServerStats { return d.stats }

// Conns exposes the live connection table; the admin listener registers its
// own connections here so the admin surface observes itself.
func (d *Dispatcher) Conns() *ConnTable { return d.conns }

// Sessions exposes the watch/ephemeral/outstanding tracker.
func (d *Dispatcher) Sessions() *SessionTracker { return d.sessions }

// Storage exposes the tree size accounting and on-disk directory sizing.
func (d *Dispatcher) Storage() *StorageInfo { return d.storage }

func (d *Dispatcher) Connections() []ConnInfo { return d.conns.Snapshot() }
func (d *Dispatcher) ConnectionCount() int { return d.conns.Count() }
func (d *Dispatcher) ResetConnectionStats() { d.conns.ResetStats() }

func (d *Dispatcher) NodeCount() uint64 { return d.storage.NodeCount() }
func (d *Dispatcher) ApproximateDataSize() uint64 { return d.storage.ApproximateDataSize() }
func (d *Dispatcher) SnapshotDirSize() uint64 { return d.storage.SnapshotDirSize() }
func (d *Dispatcher) LogDirSize() uint64 { return d.storage.LogDirSize() }

func (d *Dispatcher) OutstandingRequests() uint64 { return d.stats.Outstanding() }

func (d *Dispatcher) WatchCount() int { return d.sessions.WatchCount() }
func (d *Dispatcher) WatchPathCount() int { return d.sessions.WatchPathCount() }
func (d *Dispatcher) SessionsWithWatches() int { return d.sessions.SessionsWithWatches() }

func (d *Dispatcher) WatchesBySession() map[int64][]string { return d.sessions.WatchesBySession() }
func (d *Dispatcher) WatchesByPath() map[string][]int64 { return d.sessions.WatchesByPath() }

func (d *Dispatcher) EphemeralCount() int { return d.sessions.EphemeralCount() }
func (d *Dispatcher) EphemeralsBySession() map[int64][]string {
	return d.sessions.EphemeralsBySession()
}
func (d *Dispatcher) OutstandingBySession() map[int64]uint64 {
	return d.sessions.OutstandingBySession()
}

// ConfigEntries returns the effective configuration snapshot taken at
// startup, in rendering order.
func (d *Dispatcher) ConfigEntries() []ConfigEntry {
	out := make([]ConfigEntry, len(d.config))
	copy(out, d.config)
	return out
}

func (d *Dispatcher) Environment() Environment { return d.env }

// FileDescriptors reports open/max file descriptor counts; ok is false on
// platforms where they cannot be determined.
func (d *Dispatcher) FileDescriptors() (open, max uint64, ok bool) {
	return fileDescriptors()
}
