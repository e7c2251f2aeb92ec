package npc

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownTemplate is returned when a creature is requested for an
// unregistered template ID.
var ErrUnknownTemplate = errors.New("unknown creature template")

// Registry indexes creature templates by ID and makes instances from them.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates a Registry holding templates.
//
// Precondition: every template must be non-nil and valid.
// Postcondition: Returns an error if two templates share an ID.
func NewRegistry(templates ...*Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, tmpl := range templates {
		if err := r.Register(tmpl); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds tmpl to the registry.
//
// Precondition: tmpl must not be nil.
// Postcondition: Template(tmpl.ID) returns tmpl; returns an error if tmpl.ID is
// already registered.
func (r *Registry) Register(tmpl *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[tmpl.ID]; exists {
		return fmt.Errorf("npc: Registry.Register: template ID %q already registered", tmpl.ID)
	}
	r.templates[tmpl.ID] = tmpl
	return nil
}

// Template returns the template for id.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Template(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[id]
	return tmpl, ok
}

// IDs returns every registered template ID in ascending order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Make creates a new live instance of template id with a fresh UUID.
//
// Postcondition: Returns an error wrapping ErrUnknownTemplate if id is not registered.
func (r *Registry) Make(id string) (*Instance, error) {
	tmpl, ok := r.Template(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return NewInstance(uuid.NewString(), tmpl), nil
}
