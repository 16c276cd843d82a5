package generator

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry stores emitters by name. Registration order is kept so a
// generator without explicit targets runs emitters in a stable order.
type Registry struct {
	mu       sync.RWMutex
	emitters map[string]Emitter
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		emitters: make(map[string]Emitter),
	}
}

// Register adds an emitter by its Name(). Duplicate names return an error.
func (r *Registry) Register(emitter Emitter) error {
	if emitter == nil {
		return errors.New("generator: emitter is required")
	}
	name := emitter.Name()
	if name == "" {
		return errors.New("generator: emitter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.emitters[name]; exists {
		return fmt.Errorf("generator: emitter %q already registered", name)
	}
	r.emitters[name] = emitter
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(emitter Emitter) {
	if err := r.Register(emitter); err != nil {
		panic(err)
	}
}

// Get retrieves an emitter by name.
func (r *Registry) Get(name string) (Emitter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	emitter, ok := r.emitters[name]
	if !ok {
		return nil, fmt.Errorf("generator: unknown target %q", name)
	}
	return emitter, nil
}

// Has reports whether an emitter is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.emitters[name]
	return ok
}

// List returns the sorted emitter names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Ordered returns the emitter names in registration order.
func (r *Registry) Ordered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Len reports the number of registered emitters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
