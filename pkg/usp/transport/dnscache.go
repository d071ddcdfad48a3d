package transport

import (
	"context"
	"net"
	"sync"
	"time"
)

// entryTTL bounds how long a resolved address list is reused before a
// fresh lookup is forced, matching the conservative TTL the ancestor
// implementation's Linux DNS cache uses to tolerate short-lived DNS
// records without re-resolving on every connect.
const entryTTL = 60 * time.Second

type cacheEntry struct {
	addrs     []string
	resolvedAt time.Time
}

// DNSCache is an in-memory, TTL-bounded resolver cache, attached to a
// Transport via SetDnsCache on platforms that want it (spec.md §4.8 step
// 7 — Linux only in the original implementation).
type DNSCache struct {
	resolver *net.Resolver

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewDNSCache returns a cache backed by the standard library resolver.
func NewDNSCache() *DNSCache {
	return &DNSCache{
		resolver: net.DefaultResolver,
		entries:  make(map[string]cacheEntry),
	}
}

// Resolve returns cached addresses for host if still within entryTTL,
// otherwise performs a fresh lookup and caches the result.
func (c *DNSCache) Resolve(ctx context.Context, host string) ([]string, error) {
	c.mu.Lock()
	entry, ok := c.entries[host]
	c.mu.Unlock()

	if ok && time.Since(entry.resolvedAt) < entryTTL {
		return entry.addrs, nil
	}

	addrs, err := c.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[host] = cacheEntry{addrs: addrs, resolvedAt: time.Now()}
	c.mu.Unlock()

	return addrs, nil
}
