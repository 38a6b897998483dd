package flw

import (
	"time"

	"github.com/flwd/keeperd/internal/keeper"
)

// Dispatcher is the read surface of the coordination server that the
// commands report on. *keeper.Dispatcher implements it; tests substitute
// smaller fakes. All methods must be safe for concurrent use, and every
// read is a best-effort snapshot, never a linearizable view.
type Dispatcher interface {
	Version() string
	Uptime() time.Duration
	Role() keeper.Role
	ReadOnly() bool

	// Stats exposes the global packet/latency counters, including the
	// latency reset used by srst.
	Stats() *keeper.ServerStats
	OutstandingRequests() uint64

	Connections() []keeper.ConnInfo
	ConnectionCount() int
	ResetConnectionStats()

	NodeCount() uint64
	ApproximateDataSize() uint64
	SnapshotDirSize() uint64
	LogDirSize() uint64

	WatchCount() int
	WatchPathCount() int
	SessionsWithWatches() int
	WatchesBySession() map[int64][]string
	WatchesByPath() map[string][]int64

	EphemeralCount() int
	EphemeralsBySession() map[int64][]string
	OutstandingBySession() map[int64]uint64

	LeaderInfo() (keeper.LeaderInfo, bool)
	ConfigEntries() []keeper.ConfigEntry
	Environment() keeper.Environment
	FileDescriptors() (open, max uint64, ok bool)
}

// Command is a single four-letter administrative command. Implementations
// are immutable after construction, hold only a read handle on the
// dispatcher and render their whole response in one synchronous Run call.
//
// Run never fails: when dispatcher state is unavailable the command returns
// a degraded but well-formed response instead of aborting the connection.
type Command interface {
	Name() string
	Run() string
}
