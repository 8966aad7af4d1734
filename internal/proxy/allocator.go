// File: internal/proxy/allocator.go
package proxy

import (
	"errors"
	"sync"

	"github.com/xkilldash9x/accountforge/internal/config"
)

// Descriptor is a single allocated proxy endpoint. It is owned exclusively by
// the request pipeline it was allocated for and never shared across runs.
type Descriptor struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"-"`
	Password string `json:"-"`
	Country  string `json:"country"`
	Type     string `json:"type"`
}

// ErrPoolEmpty is returned when no endpoints are configured.
var ErrPoolEmpty = errors.New("proxy pool has no endpoints")

// Allocator hands out one proxy descriptor per automation run. Allocation
// policy beyond simple rotation is external to this service.
type Allocator interface {
	Allocate(country string) (*Descriptor, error)
}

// PoolAllocator rotates round-robin over a configured endpoint list,
// preferring endpoints in the requested country when one is named.
type PoolAllocator struct {
	mu        sync.Mutex
	endpoints []config.ProxyEndpoint
	next      int
}

// NewPoolAllocator builds an allocator over the configured pool.
func NewPoolAllocator(cfg config.ProxyConfig) *PoolAllocator {
	return &PoolAllocator{endpoints: cfg.Endpoints}
}

// Allocate returns the next endpoint in rotation. When country is non-empty
// and at least one endpoint matches it, rotation is restricted to the matches.
func (a *PoolAllocator) Allocate(country string) (*Descriptor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.endpoints) == 0 {
		return nil, ErrPoolEmpty
	}

	pool := a.endpoints
	if country != "" {
		var matches []config.ProxyEndpoint
		for _, ep := range a.endpoints {
			if ep.Country == country {
				matches = append(matches, ep)
			}
		}
		if len(matches) > 0 {
			pool = matches
		}
	}

	ep := pool[a.next%len(pool)]
	a.next++

	return &Descriptor{
		Host:     ep.Host,
		Port:     ep.Port,
		Username: ep.Username,
		Password: ep.Password,
		Country:  ep.Country,
		Type:     "mobile",
	}, nil
}
