package wallet

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGuardExclusiveLockSerializes(t *testing.T) {
	g := NewGuard()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := g.Lock("w-1")
			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxSeen) {
				atomic.StoreInt32(&maxSeen, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected one holder at a time, saw %d", maxSeen)
	}
	if g.Len() != 0 {
		t.Fatalf("expected idle guard to release its entries, got %d", g.Len())
	}
}

func TestGuardSharedLocksOverlap(t *testing.T) {
	g := NewGuard()
	first := g.RLock("w-1")
	defer first()

	acquired := make(chan struct{})
	go func() {
		unlock := g.RLock("w-1")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked behind first reader")
	}
}

func TestGuardIndependentIDsDoNotBlock(t *testing.T) {
	g := NewGuard()
	unlockA := g.Lock("w-a")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlock := g.Lock("w-b")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on w-b blocked behind w-a")
	}
}

func TestGuardWriterBlocksReaders(t *testing.T) {
	g := NewGuard()
	unlock := g.Lock("w-1")

	acquired := make(chan struct{})
	go func() {
		release := g.RLock("w-1")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("reader acquired while writer held the lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("reader never acquired after writer released")
	}
}

func TestGuardWriterNotStarvedByReaders(t *testing.T) {
	g := NewGuard()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				unlock := g.RLock("w-1")
				time.Sleep(100 * time.Microsecond)
				unlock()
			}
		}()
	}

	acquired := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		unlock := g.Lock("w-1")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("writer starved by readers")
	}
	close(stop)
	wg.Wait()
}
