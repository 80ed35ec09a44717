package simulation

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// sessionLocks serializes operations on a session ID. Distinct IDs may
// share a stripe, which adds contention but never interleaves a single
// session's read-modify-write cycles.
type sessionLocks struct {
	stripes [lockStripes]sync.Mutex
}

// lock acquires the stripe covering id and returns its release func.
func (l *sessionLocks) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &l.stripes[int(h.Sum32()%lockStripes)]
	mu.Lock()
	return mu.Unlock
}
