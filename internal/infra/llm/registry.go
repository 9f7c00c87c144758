// Registry holds the configured adapters and resolves the active provider.
// Built once at startup from available credentials, then treated as
// immutable — concurrent reads need no locking.
package llm

import "sort"

// Registry maps provider names to their Adapter instances.
type Registry struct {
	adapters        map[string]Adapter
	defaultProvider string
}

// NewRegistry creates an empty Registry whose Default resolves
// defaultProvider first.
func NewRegistry(defaultProvider string) *Registry {
	return &Registry{
		adapters:        make(map[string]Adapter),
		defaultProvider: defaultProvider,
	}
}

// Register stores adapter under name, replacing any prior registration.
func (r *Registry) Register(name string, adapter Adapter) {
	r.adapters[name] = adapter
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Default resolves the active adapter:
//  1. the adapter registered under the configured default provider name;
//  2. otherwise any one registered adapter (callers must not depend on which);
//  3. otherwise ErrNoProviderConfigured.
func (r *Registry) Default() (Adapter, error) {
	if a, ok := r.adapters[r.defaultProvider]; ok {
		return a, nil
	}
	for _, a := range r.adapters {
		return a, nil
	}
	return nil, ErrNoProviderConfigured
}

// Providers returns the sorted names of all registered providers.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
