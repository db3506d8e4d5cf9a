package objects

import "github.com/orizon-lang/heapcore/internal/schema"

// Registry hands out stable handles for schema values so an object header
// can carry a fixed-width "type_info pointer" without the managed heap
// ever having to hold a Go schema.Schema directly. Schemas are immutable
// and outlive every object written with them, so a handle never dangles
// for the lifetime of a Registry.
type Registry struct {
	schemas []schema.Schema
}

// NewRegistry returns an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register assigns schema s a handle, or returns its existing handle if s
// was already registered.
func (r *Registry) Register(s schema.Schema) uintptr {
	for i, existing := range r.schemas {
		if existing == s {
			return uintptr(i) + 1
		}
	}
	r.schemas = append(r.schemas, s)
	return uintptr(len(r.schemas))
}

// Lookup resolves a handle back to its schema. Handle 0 is never valid.
func (r *Registry) Lookup(handle uintptr) (schema.Schema, bool) {
	if handle == 0 || handle > uintptr(len(r.schemas)) {
		return nil, false
	}
	return r.schemas[handle-1], true
}
