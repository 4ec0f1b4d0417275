package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepClock_Defaults(t *testing.T) {
	clock := NewStepClock(time.Time{}, 0)
	assert.Equal(t, DefaultBase, clock.Current())
	assert.Equal(t, DefaultBase.Add(time.Second), clock.Now())
}

func TestStepClock_NextAdvancesByStep(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := NewStepClock(base, time.Millisecond)

	assert.Equal(t, base.Add(1*time.Millisecond), clock.Now())
	assert.Equal(t, base.Add(2*time.Millisecond), clock.Now())
	assert.Equal(t, base.Add(3*time.Millisecond), clock.Now())
	assert.Equal(t, base.Add(3*time.Millisecond), clock.Current())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(time.Time{}, time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, DefaultBase, clock.Current())
	assert.Equal(t, DefaultBase.Add(time.Second), clock.Now())
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(time.Time{}, time.Second)
	const numGoroutines = 50
	const callsPerGoroutine = 40

	var mu sync.Mutex
	seen := make(map[time.Time]bool)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				ts := clock.Now()
				mu.Lock()
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	total := numGoroutines * callsPerGoroutine
	require.Len(t, seen, total)
	for i := 1; i <= total; i++ {
		assert.True(t, seen[DefaultBase.Add(time.Duration(i)*time.Second)], "missing step %d", i)
	}
}

func TestStepClock_Deterministic(t *testing.T) {
	c1 := NewStepClock(time.Time{}, time.Second)
	c2 := NewStepClock(time.Time{}, time.Second)
	for i := 0; i < 100; i++ {
		assert.Equal(t, c1.Now(), c2.Now())
	}
}
