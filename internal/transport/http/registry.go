package http

import (
	"sort"
	"sync"
)

// Screen is a live game session whose state can be inspected.
type Screen interface {
	Current() any
	Watch() (<-chan any, func())
}

// Registry names the sessions a CLI process is running.
type Registry struct {
	mu      sync.RWMutex
	screens map[string]Screen
}

func NewRegistry() *Registry {
	return &Registry{screens: make(map[string]Screen)}
}

func (r *Registry) Register(name string, s Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens[name] = s
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.screens, name)
}

func (r *Registry) Get(name string) (Screen, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.screens[name]
	return s, ok
}

// Names lists registered screens in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.screens))
	for name := range r.screens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
