package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAccountLocksOppositeOrder(t *testing.T) {
	locks := newAccountLocks()
	a, b := uuid.New(), uuid.New()

	// Two goroutines acquiring the same pair in opposite argument order must
	// not deadlock; the registry sorts before locking.
	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := locks.Acquire(a, b)
			time.Sleep(time.Microsecond)
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := locks.Acquire(b, a)
			time.Sleep(time.Microsecond)
			unlock()
		}()
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lock acquisition deadlocked")
	}
}

func TestAccountLocksDeduplicates(t *testing.T) {
	locks := newAccountLocks()
	id := uuid.New()

	// Passing the same id twice must not self-deadlock.
	unlock := locks.Acquire(id, id)
	unlock()

	unlock = locks.Acquire(id)
	unlock()
}

func TestAccountLocksSerializes(t *testing.T) {
	locks := newAccountLocks()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Acquire(id)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}
