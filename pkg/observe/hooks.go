// Package observe provides hooks for instrumenting traversal runs.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific logging or metrics backends. Consumers register
// hooks at startup to receive events about tree walks and seed runs.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This keeps pkg/transform and pkg/randomize free of logging imports while
// still letting the CLI trace every dispatch decision under --verbose.
//
// # Usage
//
//	func main() {
//	    observe.SetWalkHooks(&myWalkHooks{})
//	    // ... run transform
//	}
package observe

import (
	"sync"
	"time"
)

// WalkHooks receives events from the transform tree walker.
type WalkHooks interface {
	// OnNodeVisited fires once per visited node, before dispatch.
	OnNodeVisited(path []string, nodeType string)

	// OnDispatch fires after a node's terminal result is decided.
	// handler is empty when no handler accepted the node.
	OnDispatch(path []string, handler string, ok bool, title string)

	// OnWalkComplete fires once per run with entry count and elapsed time.
	OnWalkComplete(entries int, duration time.Duration)
}

// SeedHooks receives events from the randomize collector.
type SeedHooks interface {
	// OnSourceCollected fires for each seed-bearing source found.
	OnSourceCollected(nested bool)

	// OnSeedApplied fires after the shared seed has been written everywhere.
	OnSeedApplied(seed uint16, success, failed int)
}

// NoopWalkHooks is a no-op implementation of WalkHooks.
type NoopWalkHooks struct{}

func (NoopWalkHooks) OnNodeVisited([]string, string)             {}
func (NoopWalkHooks) OnDispatch([]string, string, bool, string)  {}
func (NoopWalkHooks) OnWalkComplete(int, time.Duration)          {}

// NoopSeedHooks is a no-op implementation of SeedHooks.
type NoopSeedHooks struct{}

func (NoopSeedHooks) OnSourceCollected(bool)          {}
func (NoopSeedHooks) OnSeedApplied(uint16, int, int)  {}

var (
	walkHooks WalkHooks = NoopWalkHooks{}
	seedHooks SeedHooks = NoopSeedHooks{}
	hooksMu   sync.RWMutex
)

// SetWalkHooks registers custom walk hooks.
// This should be called once at application startup before any runs.
func SetWalkHooks(h WalkHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		walkHooks = h
	}
}

// SetSeedHooks registers custom seed hooks.
func SetSeedHooks(h SeedHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		seedHooks = h
	}
}

// Walk returns the registered walk hooks.
func Walk() WalkHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return walkHooks
}

// Seed returns the registered seed hooks.
func Seed() SeedHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return seedHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	walkHooks = NoopWalkHooks{}
	seedHooks = NoopSeedHooks{}
}
