package environment

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a Source from the given Config.
type Factory func(cfg Config) (Source, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register adds a named source factory. Plugins call this from init().
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// Create instantiates a source by name using the registered factory.
func Create(name string, cfg Config) (Source, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEnvironment, name)
	}
	return f(cfg)
}

// Names lists the registered sources in alphabetical order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
