package keeper

import (
	"io/fs"
	"path/filepath"
	"sync/atomic"
)

// StorageInfo tracks the coordination tree's size counters and knows where
// the snapshot and log directories live on disk. Node and byte counters are
// maintained by the state machine feeding this dispatcher; directory sizes
// are computed on demand because the dirs command is rare and the result
// would go stale immediately.
type StorageInfo struct {
	snapshotDir string
	logDir      string

	nodeCount atomic.Uint64
	dataSize  atomic.Uint64
}

func NewStorageInfo(snapshotDir, logDir string) *StorageInfo {
	return &StorageInfo{snapshotDir: snapshotDir, logDir: logDir}
}

// NodeCreated accounts for a new tree node of approximately size bytes.
func (s *StorageInfo) NodeCreated(size uint64) {
	s.nodeCount.Add(1)
	s.dataSize.Add(size)
}

// NodeRemoved reverses NodeCreated.
func (s *StorageInfo) NodeRemoved(size uint64) {
	s.nodeCount.Add(^uint64(0))
	s.dataSize.Add(^(size - 1))
}

func (s *StorageInfo) NodeCount() uint64 { return s.nodeCount.Load() }
func (s *StorageInfo) ApproximateDataSize() uint64 { return s.dataSize.Load() }

func (s *StorageInfo) SnapshotDirSize() uint64 { return dirSize(s.snapshotDir) }
func (s *StorageInfo) LogDirSize() uint64 { return dirSize(s.logDir) }

// dirSize sums the sizes of all regular files under root. A missing or
// unreadable directory counts as zero; the dirs command degrades rather
// than failing the connection.
func dirSize(root string) uint64 {
	if root == "" {
		return 0
	}
	var total uint64
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
