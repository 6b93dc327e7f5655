package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_StartsAtEpoch(t *testing.T) {
	clock := NewManualClock()
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, time.Duration(0), clock.Elapsed())
}

func TestManualClock_Advance(t *testing.T) {
	clock := NewManualClock()

	clock.Advance(4999 * time.Millisecond)
	assert.Equal(t, 4999*time.Millisecond, clock.Elapsed())

	clock.Advance(time.Millisecond)
	assert.Equal(t, 5*time.Second, clock.Elapsed())
	assert.Equal(t, Epoch.Add(5*time.Second), clock.Now())
}

func TestManualClock_NeverRunsBackwards(t *testing.T) {
	clock := NewManualClock()
	clock.Set(3 * time.Second)

	clock.Advance(-time.Second)
	assert.Equal(t, 3*time.Second, clock.Elapsed())

	clock.Set(time.Second)
	assert.Equal(t, 3*time.Second, clock.Elapsed())
}

func TestManualClock_Reset(t *testing.T) {
	clock := NewManualClock()
	clock.Advance(time.Minute)

	clock.Reset()
	assert.Equal(t, Epoch, clock.Now())
}

func TestManualClock_ThreadSafe(t *testing.T) {
	clock := NewManualClock()
	const goroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				clock.Advance(time.Millisecond)
				_ = clock.Now()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*callsPerGoroutine*time.Millisecond, clock.Elapsed())
}
