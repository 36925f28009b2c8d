package common

import (
	"sync"

	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/metrics"
)

// UsageControl counts in-progress requests per client address.
type UsageControl struct {
	mu      sync.Mutex
	usage   map[string]int
	max     int
	metrics *metrics.MetricsRegistry
}

func NewUsageControl(max int, m *metrics.MetricsRegistry) *UsageControl {
	if max <= 0 {
		max = constants.DefaultMaxRequestsPerClient
	}
	return &UsageControl{usage: make(map[string]int), max: max, metrics: m}
}

// IncreaseUsage admits a request from addr unless it already has max requests
// in progress. A rejected request leaves the count unchanged.
func (u *UsageControl) IncreaseUsage(addr string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.usage[addr] >= u.max {
		return false
	}
	u.usage[addr]++
	u.metrics.SetClientsActive(len(u.usage))
	return true
}

// DecreaseUsage releases one admitted request of addr.
func (u *UsageControl) DecreaseUsage(addr string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	n, ok := u.usage[addr]
	if !ok {
		return
	}
	if n <= 1 {
		delete(u.usage, addr)
	} else {
		u.usage[addr] = n - 1
	}
	u.metrics.SetClientsActive(len(u.usage))
}

// InFlight returns the number of requests in progress for addr.
func (u *UsageControl) InFlight(addr string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.usage[addr]
}

// Active returns the number of addresses with requests in progress.
func (u *UsageControl) Active() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.usage)
}

func (u *UsageControl) Max() int { return u.max }
