package flw

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/flwd/keeperd/internal/keeper"
)

// Fixed responses shared between the protocol layer and the tests.
const (
	ruokResponse         = "imok"
	serverStatsResetText = "Server stats reset.\n"
	connStatsResetText   = "Connection stats reset.\n"
	notWhiteListedText   = "command is not in the whitelist\n"
	dumpNotLeaderText    = "This server is not the leader, dump is only available on the leader.\n"
	readOnlyResponse     = "ro"
	readWriteResponse    = "rw"
)

// ruok tests process liveness. Reaching the command at all implies the
// process is alive; it says nothing about quorum membership.
type ruokCommand struct {
	d Dispatcher
}

func (c *ruokCommand) Name() string { return "ruok" }
func (c *ruokCommand) Run() string { return ruokResponse }

// mntr emits the cluster health variables, one zk_ key per line.
type monitorCommand struct {
	d Dispatcher
}

func (c *monitorCommand) Name() string { return "mntr" }

func (c *monitorCommand) Run() string {
	stats := c.d.Stats()

	var b strings.Builder
	printKV(&b, "zk_version", c.d.Version())
	printKV(&b, "zk_avg_latency", stats.AvgLatency())
	printKV(&b, "zk_max_latency", stats.MaxLatency())
	printKV(&b, "zk_min_latency", stats.MinLatency())
	printKV(&b, "zk_packets_received", stats.PacketsReceived())
	printKV(&b, "zk_packets_sent", stats.PacketsSent())
	printKV(&b, "zk_outstanding_requests", c.d.OutstandingRequests())
	printKV(&b, "zk_server_state", string(c.d.Role()))
	printKV(&b, "zk_znode_count", c.d.NodeCount())
	printKV(&b, "zk_watch_count", c.d.WatchCount())
	printKV(&b, "zk_ephemerals_count", c.d.EphemeralCount())
	printKV(&b, "zk_approximate_data_size", c.d.ApproximateDataSize())

	if open, max, ok := c.d.FileDescriptors(); ok {
		printKV(&b, "zk_open_file_descriptor_count", open)
		printKV(&b, "zk_max_file_descriptor_count", max)
	}

	if info, ok := c.d.LeaderInfo(); ok {
		printKV(&b, "zk_followers", info.Followers)
		printKV(&b, "zk_synced_followers", info.SyncedFollowers)
		printKV(&b, "zk_pending_syncs", info.PendingSyncs)
	}
	return b.String()
}

// srst zeroes the accumulated latency statistics. Packet counters and
// connection/watch state are untouched.
type statResetCommand struct {
	d Dispatcher
}

func (c *statResetCommand) Name() string { return "srst" }

func (c *statResetCommand) Run() string {
	c.d.Stats().ResetLatency()
	return serverStatsResetText
}

// nopc replies with a fixed advisory and nothing else. The execution
// protocol substitutes it for any known command that is not whitelisted.
type nopCommand struct {
	d Dispatcher
}

func (c *nopCommand) Name() string { return "nopc" }
func (c *nopCommand) Run() string { return notWhiteListedText }

// conf prints the effective server configuration.
type confCommand struct {
	d Dispatcher
}

func (c *confCommand) Name() string { return "conf" }

func (c *confCommand) Run() string {
	var b strings.Builder
	for _, entry := range c.d.ConfigEntries() {
		fmt.Fprintf(&b, "%s=%s\n", entry.Key, entry.Value)
	}
	return b.String()
}

// cons lists full statistics for every live connection.
type consCommand struct {
	d Dispatcher
}

func (c *consCommand) Name() string { return "cons" }

func (c *consCommand) Run() string {
	var b strings.Builder
	for _, conn := range c.d.Connections() {
		fmt.Fprintf(&b, " %s(recved=%d,sent=%d,sid=0x%x,lop=%s,est=%d,minlat=%d,avglat=%d,maxlat=%d)\n",
			conn.RemoteAddr, conn.Recved, conn.Sent, conn.SessionID, conn.LastOp,
			conn.Established.UnixMilli(), conn.MinLatency, conn.AvgLatency, conn.MaxLatency)
	}
	return b.String()
}

// crst zeroes the per-connection statistics of every live connection.
type connStatsResetCommand struct {
	d Dispatcher
}

func (c *connStatsResetCommand) Name() string { return "crst" }

func (c *connStatsResetCommand) Run() string {
	c.d.ResetConnectionStats()
	return connStatsResetText
}

// srvr lists full details for the server.
type serverStatCommand struct {
	d Dispatcher
}

func (c *serverStatCommand) Name() string { return "srvr" }

func (c *serverStatCommand) Run() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Keeper version: %s\n", c.d.Version())
	fmt.Fprintf(&b, "Uptime: %s\n", c.d.Uptime().Truncate(time.Second))
	writeStatLines(&b, c.d)
	return b.String()
}

// stat lists brief server details plus the connected clients.
type statCommand struct {
	d Dispatcher
}

func (c *statCommand) Name() string { return "stat" }

func (c *statCommand) Run() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Keeper version: %s\n", c.d.Version())
	b.WriteString("Clients:\n")
	for _, conn := range c.d.Connections() {
		fmt.Fprintf(&b, " %s(recved=%d,sent=%d)\n", conn.RemoteAddr, conn.Recved, conn.Sent)
	}
	b.WriteString("\n")
	writeStatLines(&b, c.d)
	return b.String()
}

// writeStatLines renders the latency/counter/mode block shared by srvr and
// stat.
func writeStatLines(b *strings.Builder, d Dispatcher) {
	stats := d.Stats()
	fmt.Fprintf(b, "Latency min/avg/max: %d/%d/%d\n",
		stats.MinLatency(), stats.AvgLatency(), stats.MaxLatency())
	fmt.Fprintf(b, "Received: %d\n", stats.PacketsReceived())
	fmt.Fprintf(b, "Sent: %d\n", stats.PacketsSent())
	fmt.Fprintf(b, "Connections: %d\n", d.ConnectionCount())
	fmt.Fprintf(b, "Outstanding: %d\n", d.OutstandingRequests())
	fmt.Fprintf(b, "Mode: %s\n", d.Role())
	fmt.Fprintf(b, "Node count: %d\n", d.NodeCount())
}

// wchs summarizes the watch state.
type briefWatchCommand struct {
	d Dispatcher
}

func (c *briefWatchCommand) Name() string { return "wchs" }

func (c *briefWatchCommand) Run() string {
	return fmt.Sprintf("%d connections watching %d paths\nTotal watches:%d\n",
		c.d.SessionsWithWatches(), c.d.WatchPathCount(), c.d.WatchCount())
}

// wchc lists watches grouped by session. Expensive with many watches.
type watchCommand struct {
	d Dispatcher
}

func (c *watchCommand) Name() string { return "wchc" }

func (c *watchCommand) Run() string {
	var b strings.Builder
	bySession := c.d.WatchesBySession()
	for _, sid := range sortedSessionIDs(bySession) {
		fmt.Fprintf(&b, "0x%x\n", sid)
		for _, path := range bySession[sid] {
			fmt.Fprintf(&b, "\t%s\n", path)
		}
	}
	return b.String()
}

// wchp lists watches grouped by path. Expensive with many watches.
type watchByPathCommand struct {
	d Dispatcher
}

func (c *watchByPathCommand) Name() string { return "wchp" }

func (c *watchByPathCommand) Run() string {
	var b strings.Builder
	byPath := c.d.WatchesByPath()
	for _, path := range sortedPathKeys(byPath) {
		fmt.Fprintf(&b, "%s\n", path)
		for _, sid := range byPath[path] {
			fmt.Fprintf(&b, "\t0x%x\n", sid)
		}
	}
	return b.String()
}

// dump lists outstanding requests and ephemeral nodes per session. Only the
// leader (or a standalone server) has the authoritative session view; any
// other role answers with an explanatory line.
type dumpCommand struct {
	d Dispatcher
}

func (c *dumpCommand) Name() string { return "dump" }

func (c *dumpCommand) Run() string {
	role := c.d.Role()
	if role != keeper.RoleLeader && role != keeper.RoleStandalone {
		return dumpNotLeaderText
	}

	var b strings.Builder
	outstanding := c.d.OutstandingBySession()
	fmt.Fprintf(&b, "Outstanding requests (%d):\n", len(outstanding))
	for _, sid := range sortedSessionIDs(outstanding) {
		fmt.Fprintf(&b, "0x%x: %d\n", sid, outstanding[sid])
	}

	ephemerals := c.d.EphemeralsBySession()
	fmt.Fprintf(&b, "Sessions with Ephemerals (%d):\n", len(ephemerals))
	for _, sid := range sortedSessionIDs(ephemerals) {
		fmt.Fprintf(&b, "0x%x:\n", sid)
		for _, path := range ephemerals[sid] {
			fmt.Fprintf(&b, "\t%s\n", path)
		}
	}
	return b.String()
}

// envi prints details about the serving environment.
type enviCommand struct {
	d Dispatcher
}

func (c *enviCommand) Name() string { return "envi" }

func (c *enviCommand) Run() string {
	env := c.d.Environment()

	var b strings.Builder
	b.WriteString("Environment:\n")
	fmt.Fprintf(&b, "keeper.version=%s\n", env.Version)
	fmt.Fprintf(&b, "host.name=%s\n", env.HostName)
	fmt.Fprintf(&b, "go.version=%s\n", env.GoVersion)
	fmt.Fprintf(&b, "os.name=%s\n", env.OSName)
	fmt.Fprintf(&b, "os.arch=%s\n", env.OSArch)
	fmt.Fprintf(&b, "pid=%d\n", env.PID)
	fmt.Fprintf(&b, "user.name=%s\n", env.UserName)
	fmt.Fprintf(&b, "user.dir=%s\n", env.UserDir)
	fmt.Fprintf(&b, "run.id=%s\n", env.RunID)
	return b.String()
}

// dirs shows the on-disk size of the snapshot and log directories.
type dataSizeCommand struct {
	d Dispatcher
}

func (c *dataSizeCommand) Name() string { return "dirs" }

func (c *dataSizeCommand) Run() string {
	return fmt.Sprintf("snapshot_dir_size: %d\nlog_dir_size: %d\n",
		c.d.SnapshotDirSize(), c.d.LogDirSize())
}

// isro reports whether the server is serving in read-only mode.
type isReadOnlyCommand struct {
	d Dispatcher
}

func (c *isReadOnlyCommand) Name() string { return "isro" }

func (c *isReadOnlyCommand) Run() string {
	if c.d.ReadOnly() {
		return readOnlyResponse
	}
	return readWriteResponse
}

func printKV(b *strings.Builder, key string, value any) {
	fmt.Fprintf(b, "%s\t%v\n", key, value)
}

func sortedSessionIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for sid := range m {
		ids = append(ids, sid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedPathKeys[V any](m map[string]V) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
