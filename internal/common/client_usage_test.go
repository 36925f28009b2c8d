package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageControl_Ceiling(t *testing.T) {
	u := NewUsageControl(10, nil)

	for i := 0; i < 10; i++ {
		assert.True(t, u.IncreaseUsage("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, u.IncreaseUsage("10.0.0.1"))
	assert.Equal(t, 10, u.InFlight("10.0.0.1"))

	assert.True(t, u.IncreaseUsage("10.0.0.2"))

	u.DecreaseUsage("10.0.0.1")
	assert.True(t, u.IncreaseUsage("10.0.0.1"))
}

func TestUsageControl_ReleaseRemovesIdleClients(t *testing.T) {
	u := NewUsageControl(0, nil)
	assert.Equal(t, 10, u.Max())

	u.IncreaseUsage("10.0.0.1")
	u.IncreaseUsage("10.0.0.1")
	assert.Equal(t, 1, u.Active())

	u.DecreaseUsage("10.0.0.1")
	u.DecreaseUsage("10.0.0.1")
	u.DecreaseUsage("10.0.0.1")
	assert.Equal(t, 0, u.Active())
	assert.Equal(t, 0, u.InFlight("10.0.0.1"))
}

func TestUsageControl_Concurrent(t *testing.T) {
	u := NewUsageControl(5, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if u.IncreaseUsage("10.0.0.1") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, admitted)
}
