// Package database opens the storage backends used by builder-manager and
// exposes readiness checks for each of them.
package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Checks runs named health checks concurrently.
type Checks struct {
	mu     sync.RWMutex
	checks map[string]HealthCheck
}

func NewChecks() *Checks {
	return &Checks{checks: make(map[string]HealthCheck)}
}

func (c *Checks) Register(name string, check HealthCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run returns one entry per registered check: "ok" or the error text.
// The error is non-nil when any check failed.
func (c *Checks) Run(ctx context.Context, timeout time.Duration) (map[string]string, error) {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		c.mu.RLock()
		check := c.checks[name]
		c.mu.RUnlock()

		wg.Add(1)
		go func(i int, check HealthCheck) {
			defer wg.Done()
			if err := check(ctx); err != nil {
				results[i] = err.Error()
				return
			}
			results[i] = "ok"
		}(i, check)
	}
	wg.Wait()

	out := make(map[string]string, len(names))
	var failed []string
	for i, name := range names {
		out[name] = results[i]
		if results[i] != "ok" {
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return out, fmt.Errorf("unhealthy dependencies: %v", failed)
	}
	return out, nil
}
