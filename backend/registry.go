// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/glink/driver"
)

// registry holds registered backend factories.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Open(""). First backend that opens wins.
	priority = []string{GL}
)

// Register registers a backend factory under the given name. This is
// typically called from init functions in backend packages. Registering
// a name twice replaces the earlier factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry. Useful for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a backend with the given name is
// registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens the named backend. The empty name means "best available":
// the priority order is tried first, then any remaining registered
// backend, and the first context that opens is returned.
func Open(name string) (driver.Context, error) {
	if name != "" {
		registryMu.RLock()
		factory, ok := factories[name]
		registryMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
		}
		return factory()
	}

	for _, candidate := range openOrder() {
		registryMu.RLock()
		factory, ok := factories[candidate]
		registryMu.RUnlock()
		if !ok {
			continue
		}
		if ctx, err := factory(); err == nil {
			return ctx, nil
		}
	}
	return nil, ErrNoneAvailable
}

// openOrder returns the priority names followed by any other
// registered names.
func openOrder() []string {
	order := append([]string(nil), priority...)
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		seen[name] = true
	}
	for _, name := range Available() {
		if !seen[name] {
			order = append(order, name)
		}
	}
	return order
}
