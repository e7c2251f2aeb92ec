package npc

import "slices"

// Instance is a live creature occupying a location.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string `json:"id"`
	// TemplateID is the source template's ID.
	TemplateID string `json:"template_id"`
	// Name is copied from the template for display.
	Name string `json:"name"`
	// Description is copied from the template.
	Description string `json:"description"`
	// CurrentHP is the instance's current hit points.
	CurrentHP int `json:"current_hp"`
	// MaxHP is the instance's maximum hit points.
	MaxHP int `json:"max_hp"`
	// Attack is the damage dealt per hit.
	Attack int `json:"attack"`
	// Level is the instance's level.
	Level int `json:"level"`
	// Tags are copied from the template.
	Tags []string `json:"tags,omitempty"`
}

// NewInstance creates a live creature instance from a template.
//
// Precondition: id must be non-empty; tmpl must be non-nil.
// Postcondition: CurrentHP equals tmpl.MaxHP.
func NewInstance(id string, tmpl *Template) *Instance {
	return &Instance{
		ID:          id,
		TemplateID:  tmpl.ID,
		Name:        tmpl.Name,
		Description: tmpl.Description,
		CurrentHP:   tmpl.MaxHP,
		MaxHP:       tmpl.MaxHP,
		Attack:      tmpl.Attack,
		Level:       tmpl.Level,
		Tags:        slices.Clone(tmpl.Tags),
	}
}

// TakeDamage subtracts amount from CurrentHP, never going below zero.
//
// Precondition: amount >= 0.
// Postcondition: Returns true iff the instance is dead afterwards.
func (i *Instance) TakeDamage(amount int) bool {
	i.CurrentHP = max(i.CurrentHP-amount, 0)
	return i.IsDead()
}

// IsDead reports whether the instance has zero or fewer hit points.
func (i *Instance) IsDead() bool {
	return i.CurrentHP <= 0
}

// HasTag reports whether the instance carries tag.
func (i *Instance) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// HealthDescription returns a visible health state string suitable for look output.
//
// Postcondition: Returns a non-empty string.
func (i *Instance) HealthDescription() string {
	if i.CurrentHP <= 0 {
		return "dead"
	}
	pct := float64(i.CurrentHP) / float64(i.MaxHP)
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.75:
		return "lightly wounded"
	case pct >= 0.40:
		return "wounded"
	case pct >= 0.15:
		return "badly wounded"
	default:
		return "near death"
	}
}
