package cache

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// PendingRegistry coalesces concurrent fetches that share a key into one
// underlying call: late joiners block on the in-flight call and observe its
// outcome, success or failure. The registration is dropped when the call
// settles, so a failed fetch never poisons a later one.
type PendingRegistry struct {
	group singleflight.Group

	// active tracks the keys with callers currently inside GetOrRun, so a
	// category-wide Forget can find the per-key operations still in flight.
	mu     sync.Mutex
	active map[string]int
}

func NewPendingRegistry() *PendingRegistry {
	return &PendingRegistry{active: make(map[string]int)}
}

// GetOrRun joins the in-flight operation registered under key, or starts
// op and registers it. shared reports whether the result was served to
// more than one caller.
func (r *PendingRegistry) GetOrRun(key string, op func() (any, error)) (v any, err error, shared bool) {
	r.mu.Lock()
	r.active[key]++
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active[key]--
		if r.active[key] <= 0 {
			delete(r.active, key)
		}
		r.mu.Unlock()
	}()
	return r.group.Do(key, op)
}

// Forget drops the registration for key so the next GetOrRun starts a
// fresh operation instead of joining a call that predates an invalidation.
func (r *PendingRegistry) Forget(key string) {
	r.group.Forget(key)
}

// ForgetPrefix drops every registration whose key starts with prefix,
// in-flight ones included.
func (r *PendingRegistry) ForgetPrefix(prefix string) {
	r.mu.Lock()
	keys := make([]string, 0, len(r.active))
	for k := range r.active {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	r.mu.Unlock()
	for _, k := range keys {
		r.group.Forget(k)
	}
}
