package keymutex

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	m := New[int64]()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock(7)
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if m.Len() != 0 {
		t.Fatalf("Len() = %d after all unlocks, want 0", m.Len())
	}
}

func TestLockDifferentKeysDoNotBlock(t *testing.T) {
	m := New[string]()

	unlockA := m.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := m.Lock("b")
		unlock()
		close(done)
	}()
	<-done
}

func TestUnlockIsIdempotent(t *testing.T) {
	m := New[int]()

	unlock := m.Lock(1)
	unlock()
	unlock()

	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", m.Len())
	}
}
