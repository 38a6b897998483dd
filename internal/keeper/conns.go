package keeper

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// TrackedConn is the live per-connection statistics record. One is created
// by the connection table when a client or admin connection is accepted and
// removed when it closes. Counter updates are lock-free; the last-operation
// name is guarded by a small mutex because it is a string swap.
type TrackedConn struct {
	id          uint64
	remoteAddr  string
	established time.Time

	sessionID atomic.Int64

	recved atomic.Uint64
	sent   atomic.Uint64

	latencyCount atomic.Uint64
	latencySum   atomic.Uint64
	latencyMax   atomic.Uint64
	latencyMin   atomic.Uint64

	mu     sync.Mutex
	lastOp string
}

// ConnInfo is an immutable snapshot of one tracked connection, as reported
// by the cons and stat commands.
type ConnInfo struct {
	RemoteAddr  string
	SessionID   int64
	Established time.Time
	Recved      uint64
	Sent        uint64
	LastOp      string
	MinLatency  uint64
	AvgLatency  uint64
	MaxLatency  uint64
}

func (c *TrackedConn) RemoteAddr() string { return c.remoteAddr }

// SetSessionID binds the connection to a session once the handshake
// completes. Admin connections never call this and report session id 0.
func (c *TrackedConn) SetSessionID(sid int64) { c.sessionID.Store(sid) }

func (c *TrackedConn) RecordReceived() { c.recved.Add(1) }
func (c *TrackedConn) RecordSent() { c.sent.Add(1) }

// RecordOperation notes the most recent operation name and folds its latency
// into the per-connection accumulators.
func (c *TrackedConn) RecordOperation(op string, latencyMS uint64) {
	c.mu.Lock()
	c.lastOp = op
	c.mu.Unlock()

	c.latencyCount.Add(1)
	c.latencySum.Add(latencyMS)
	for {
		max := c.latencyMax.Load()
		if latencyMS <= max || c.latencyMax.CompareAndSwap(max, latencyMS) {
			break
		}
	}
	for {
		min := c.latencyMin.Load()
		if latencyMS >= min || c.latencyMin.CompareAndSwap(min, latencyMS) {
			break
		}
	}
}

func (c *TrackedConn) resetStats() {
	c.recved.Store(0)
	c.sent.Store(0)
	c.latencyCount.Store(0)
	c.latencySum.Store(0)
	c.latencyMax.Store(0)
	c.latencyMin.Store(math.MaxUint64)
}

func (c *TrackedConn) snapshot() ConnInfo {
	c.mu.Lock()
	lastOp := c.lastOp
	c.mu.Unlock()

	info := ConnInfo{
		RemoteAddr:  c.remoteAddr,
		SessionID:   c.sessionID.Load(),
		Established: c.established,
		Recved:      c.recved.Load(),
		Sent:        c.sent.Load(),
		LastOp:      lastOp,
		MaxLatency:  c.latencyMax.Load(),
	}
	if min := c.latencyMin.Load(); min != math.MaxUint64 {
		info.MinLatency = min
	}
	if count := c.latencyCount.Load(); count > 0 {
		info.AvgLatency = c.latencySum.Load() / count
	}
	return info
}

// ConnTable tracks all live connections for the cons/stat/crst commands.
type ConnTable struct {
	mu     sync.RWMutex
	nextID uint64
	conns  map[uint64]*TrackedConn
}

func NewConnTable() *ConnTable {
	return &ConnTable{conns: make(map[uint64]*TrackedConn)}
}

// Open registers a new connection and returns its live record.
func (t *ConnTable) Open(remoteAddr string) *TrackedConn {
	c := &TrackedConn{
		remoteAddr:  remoteAddr,
		established: time.Now(),
		lastOp:      "NA",
	}
	c.latencyMin.Store(math.MaxUint64)

	t.mu.Lock()
	t.nextID++
	c.id = t.nextID
	t.conns[c.id] = c
	t.mu.Unlock()
	return c
}

// Close removes a connection from the table. Closing an already removed
// connection is a no-op.
func (t *ConnTable) Close(c *TrackedConn) {
	if c == nil {
		return
	}
	t.mu.Lock()
	delete(t.conns, c.id)
	t.mu.Unlock()
}

func (t *ConnTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}

// Snapshot returns a point-in-time copy of every live connection, ordered by
// establishment so repeated listings are stable.
func (t *ConnTable) Snapshot() []ConnInfo {
	t.mu.RLock()
	conns := make([]*TrackedConn, 0, len(t.conns))
	for _, c := range t.conns {
		conns = append(conns, c)
	}
	t.mu.RUnlock()

	sort.Slice(conns, func(i, j int) bool { return conns[i].id < conns[j].id })

	infos := make([]ConnInfo, 0, len(conns))
	for _, c := range conns {
		infos = append(infos, c.snapshot())
	}
	return infos
}

// ResetStats zeroes the counters of every live connection. Connections
// themselves stay in the table; only their statistics are cleared.
func (t *ConnTable) ResetStats() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.conns {
		c.resetStats()
	}
}
