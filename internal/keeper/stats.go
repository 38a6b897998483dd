package keeper

import (
	"math"
	"sync/atomic"
)

// ServerStats holds the global request counters reported by the monitoring
// commands. All fields are atomics: they are bumped on the hot path by every
// connection handler and read concurrently by any number of admin connections.
type ServerStats struct {
	packetsReceived atomic.Uint64
	packetsSent     atomic.Uint64

	latencyCount atomic.Uint64
	latencySum   atomic.Uint64
	latencyMax   atomic.Uint64
	latencyMin   atomic.Uint64 // math.MaxUint64 until the first sample

	outstanding atomic.Int64
}

// NewServerStats returns a zeroed stats block.
func NewServerStats() *ServerStats {
	s := &ServerStats{}
	s.latencyMin.Store(math.MaxUint64)
	return s
}

func (s *ServerStats) IncPacketsReceived() { s.packetsReceived.Add(1) }
func (s *ServerStats) IncPacketsSent() { s.packetsSent.Add(1) }

func (s *ServerStats) PacketsReceived() uint64 { return s.packetsReceived.Load() }
func (s *ServerStats) PacketsSent() uint64 { return s.packetsSent.Load() }

// RecordLatency folds one request latency (milliseconds) into the
// min/avg/max accumulators.
func (s *ServerStats) RecordLatency(ms uint64) {
	s.latencyCount.Add(1)
	s.latencySum.Add(ms)

	for {
		max := s.latencyMax.Load()
		if ms <= max || s.latencyMax.CompareAndSwap(max, ms) {
			break
		}
	}
	for {
		min := s.latencyMin.Load()
		if ms >= min || s.latencyMin.CompareAndSwap(min, ms) {
			break
		}
	}
}

// AvgLatency returns the mean request latency in milliseconds, 0 when no
// request has been recorded yet.
func (s *ServerStats) AvgLatency() uint64 {
	count := s.latencyCount.Load()
	if count == 0 {
		return 0
	}
	return s.latencySum.Load() / count
}

func (s *ServerStats) MaxLatency() uint64 { return s.latencyMax.Load() }

func (s *ServerStats) MinLatency() uint64 {
	min := s.latencyMin.Load()
	if min == math.MaxUint64 {
		return 0
	}
	return min
}

// ResetLatency zeroes the latency accumulators. Packet counters are lifetime
// totals and deliberately survive the reset.
func (s *ServerStats) ResetLatency() {
	s.latencyCount.Store(0)
	s.latencySum.Store(0)
	s.latencyMax.Store(0)
	s.latencyMin.Store(math.MaxUint64)
}

func (s *ServerStats) IncOutstanding() { s.outstanding.Add(1) }
func (s *ServerStats) DecOutstanding() { s.outstanding.Add(-1) }

// Outstanding returns the number of requests currently queued for
// processing. Clamped at zero so a late decrement never underflows the
// reported value.
func (s *ServerStats) Outstanding() uint64 {
	n := s.outstanding.Load()
	if n < 0 {
		return 0
	}
	return uint64(n)
}
