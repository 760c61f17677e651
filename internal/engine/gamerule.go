package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// flagCache holds recently queried gamerule values with a freshness TTL.
// Single-writer replace per entry; safe under the dispatch worker pool.
type flagCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]flagEntry
}

type flagEntry struct {
	value     string
	fetchedAt time.Time
}

func newFlagCache(ttl time.Duration) *flagCache {
	return &flagCache{ttl: ttl, entries: make(map[string]flagEntry)}
}

func (c *flagCache) get(name string, now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok || now.Sub(e.fetchedAt) >= c.ttl {
		return "", false
	}
	return e.value, true
}

func (c *flagCache) put(name, value string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = flagEntry{value: value, fetchedAt: now}
}

func (c *flagCache) drop(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Responses look like "Gamerule doMobSpawning is currently set to: false".
var gameruleValueRE = regexp.MustCompile(`set to:?\s*([A-Za-z0-9_.+-]+)`)

// QueryGamerule returns the flag's value, from cache when fresh, otherwise
// via one query command.
func (e *Engine) QueryGamerule(ctx context.Context, name string) (string, error) {
	if v, ok := e.rules.get(name, e.now()); ok {
		return v, nil
	}

	res := e.run(ctx, ExecSpec{Command: "gamerule " + name, Verify: true, Kind: OpFlagQuery})
	if !res.Success {
		return "", fmt.Errorf("query gamerule %s: %s", name, res.ErrorMessage())
	}
	m := gameruleValueRE.FindStringSubmatch(res.RawResponse)
	if m == nil {
		return "", fmt.Errorf("query gamerule %s: no value in response %q", name, firstLine(res.RawResponse))
	}
	v := m[1]
	e.rules.put(name, v, e.now())
	return v, nil
}

// SetGamerule issues a set command. It invalidates (never pre-populates)
// the cached entry: whether the set actually took effect must be observed
// with VerifyGamerule, since intervening commands may not have gone through
// this client.
func (e *Engine) SetGamerule(ctx context.Context, name, value string) CommandResult {
	res := e.run(ctx, ExecSpec{Command: fmt.Sprintf("gamerule %s %s", name, value), Verify: true, Kind: OpGeneric})
	e.rules.drop(name)
	return res
}

// VerifyGamerule reports whether the flag currently holds the expected
// value, using the cache within its TTL.
func (e *Engine) VerifyGamerule(ctx context.Context, name, expected string) (bool, error) {
	v, err := e.QueryGamerule(ctx, name)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(v, expected), nil
}
