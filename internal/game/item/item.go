// Package item provides item definitions loaded from YAML and the live item
// instances placed in locations.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Kind constants for Def.Kind.
const (
	KindWeapon   = "weapon"
	KindFood     = "food"
	KindClothing = "clothing"
	KindMisc     = "misc"
)

// validKinds is the set of valid Def kinds.
var validKinds = map[string]bool{
	KindWeapon:   true,
	KindFood:     true,
	KindClothing: true,
	KindMisc:     true,
}

// Def defines the static properties of an item loaded from YAML.
type Def struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Kind        string  `yaml:"kind"`
	Weight      float64 `yaml:"weight"`
	Damage      int     `yaml:"damage"`
	Nutrition   int     `yaml:"nutrition"`
}

// Validate checks that the Def satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of weapon, food, clothing, misc; got %q", d.Kind))
	}
	if d.Weight < 0 {
		errs = append(errs, errors.New("Weight must be >= 0"))
	}
	if d.Kind == KindWeapon && d.Damage < 1 {
		errs = append(errs, errors.New("Damage must be >= 1 when Kind is weapon"))
	}
	if d.Kind == KindFood && d.Nutrition < 1 {
		errs = append(errs, errors.New("Nutrition must be >= 1 when Kind is food"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as a Def,
// validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Defs or the first encountered error.
func LoadItems(dir string) ([]*Def, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var defs []*Def
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d Def
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		defs = append(defs, &d)
	}
	return defs, nil
}

// Instance is a concrete item lying in a location or carried by the hero.
type Instance struct {
	ID          string  `json:"id"`
	DefID       string  `json:"def_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Kind        string  `json:"kind"`
	Weight      float64 `json:"weight"`
}

// NewInstance creates an item instance of d.
//
// Precondition: id must be non-empty; d must be non-nil.
func NewInstance(id string, d *Def) *Instance {
	return &Instance{
		ID:          id,
		DefID:       d.ID,
		Name:        d.Name,
		Description: d.Description,
		Kind:        d.Kind,
		Weight:      d.Weight,
	}
}
