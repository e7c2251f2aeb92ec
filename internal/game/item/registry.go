package item

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownItem is returned when an instance is requested for an unregistered Def ID.
var ErrUnknownItem = errors.New("unknown item definition")

// Registry holds all loaded item definitions indexed by ID.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Def
}

// NewRegistry returns a Registry holding defs.
//
// Postcondition: returns an error if two defs share an ID.
func NewRegistry(defs ...*Def) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Def, len(defs))}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Def(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) Register(d *Def) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[d.ID]; exists {
		return fmt.Errorf("item: Registry.Register: item ID %q already registered", d.ID)
	}
	r.defs[d.ID] = d
	return nil
}

// Def returns the Def for the given id and whether it was found.
func (r *Registry) Def(id string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[id]
	return d, ok
}

// IDs returns all registered IDs in ascending order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Make creates a new instance of Def id with a fresh UUID.
//
// Postcondition: returns an error wrapping ErrUnknownItem if id is not registered.
func (r *Registry) Make(id string) (*Instance, error) {
	d, ok := r.Def(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return NewInstance(uuid.NewString(), d), nil
}
