package wallet

import "sync"

// Guard hands out one reader/writer lock per wallet id. Locks are created on first use
// and dropped once nobody holds or waits on them.
//
// sync.RWMutex blocks new readers while a writer is waiting, so a stream of reads
// cannot starve a write; readers queued behind a writer are admitted when it unlocks.
type Guard struct {
	mu      sync.Mutex
	entries map[string]*guardEntry
}

type guardEntry struct {
	lock sync.RWMutex
	refs int
}

// NewGuard builds an empty Guard.
func NewGuard() *Guard {
	return &Guard{entries: make(map[string]*guardEntry)}
}

// Lock takes the exclusive lock for id and returns its release function.
func (g *Guard) Lock(id string) (unlock func()) {
	e := g.acquire(id)
	e.lock.Lock()
	return func() {
		e.lock.Unlock()
		g.release(id, e)
	}
}

// RLock takes the shared lock for id and returns its release function.
func (g *Guard) RLock(id string) (unlock func()) {
	e := g.acquire(id)
	e.lock.RLock()
	return func() {
		e.lock.RUnlock()
		g.release(id, e)
	}
}

// Len is the number of ids with a live lock.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

func (g *Guard) acquire(id string) *guardEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[id]
	if !ok {
		e = &guardEntry{}
		g.entries[id] = e
	}
	e.refs++
	return e
}

func (g *Guard) release(id string, e *guardEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(g.entries, id)
	}
}
