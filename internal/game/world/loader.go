package world

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed preset.schema.json
var presetSchemaJSON string

var presetSchema = jsonschema.MustCompileString("preset.schema.json", presetSchemaJSON)

// yamlPresetFile is the top-level YAML structure for preset files.
type yamlPresetFile struct {
	Presets []yamlPreset `yaml:"presets"`
}

// yamlPreset is the YAML representation of a location preset.
type yamlPreset struct {
	ID                string        `yaml:"id"`
	Name              string        `yaml:"name"`
	Description       string        `yaml:"description"`
	Type              string        `yaml:"type"`
	LightPermittivity float64       `yaml:"light_permittivity"`
	Spawners          []yamlSpawner `yaml:"spawners"`
	Items             []yamlItem    `yaml:"items"`
}

// yamlSpawner is the YAML representation of a spawner preset.
type yamlSpawner struct {
	Creature     string `yaml:"creature"`
	Population   int    `yaml:"population"`
	SpawnsPerDay int    `yaml:"spawns_per_day"`
}

// yamlItem is the YAML representation of an item chance.
type yamlItem struct {
	Item        string  `yaml:"item"`
	Probability float64 `yaml:"probability"`
}

// validateAgainstSchema checks a YAML document against the preset schema.
// The document is round-tripped through JSON so the validator sees plain JSON values.
func validateAgainstSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing preset YAML: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting preset YAML to JSON: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decoding preset JSON: %w", err)
	}
	if err := presetSchema.Validate(v); err != nil {
		return fmt.Errorf("preset schema: %w", err)
	}
	return nil
}

// LoadPresetsFromBytes parses, schema-checks and validates presets from YAML bytes.
//
// Precondition: data must be a YAML document with a top-level presets list.
// Postcondition: Returns validated presets or a non-nil error.
func LoadPresetsFromBytes(data []byte) ([]*Preset, error) {
	if err := validateAgainstSchema(data); err != nil {
		return nil, err
	}
	var file yamlPresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing preset YAML: %w", err)
	}

	presets := make([]*Preset, 0, len(file.Presets))
	for _, yp := range file.Presets {
		p := convertYAMLPreset(yp)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("validating preset: %w", err)
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// LoadPresetsFromFile reads and validates a single preset YAML file.
func LoadPresetsFromFile(path string) ([]*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file %s: %w", path, err)
	}
	return LoadPresetsFromBytes(data)
}

// LoadPresetsFromDir loads all YAML files in a directory as presets.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated presets or the first error encountered;
// fails if no presets are found or two presets share an ID.
func LoadPresetsFromDir(dir string) ([]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading preset directory %s: %w", dir, err)
	}

	var presets []*Preset
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		loaded, err := LoadPresetsFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading presets from %s: %w", name, err)
		}
		for _, p := range loaded {
			if other, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("duplicate preset ID %q: in %s and %s", p.ID, other, name)
			}
			seen[p.ID] = name
		}
		presets = append(presets, loaded...)
	}

	if len(presets) == 0 {
		return nil, fmt.Errorf("no preset files found in %s", dir)
	}
	return presets, nil
}

// convertYAMLPreset converts the parsed YAML structures into domain types.
// An omitted type defaults to land.
func convertYAMLPreset(yp yamlPreset) *Preset {
	p := &Preset{
		ID:                yp.ID,
		Name:              yp.Name,
		Description:       strings.TrimSpace(yp.Description),
		Type:              PresetType(yp.Type),
		LightPermittivity: yp.LightPermittivity,
	}
	if p.Type == "" {
		p.Type = PresetLand
	}
	for _, ys := range yp.Spawners {
		p.Spawners = append(p.Spawners, SpawnerPreset{
			CreatureID:   ys.Creature,
			Population:   ys.Population,
			SpawnsPerDay: ys.SpawnsPerDay,
		})
	}
	for _, yi := range yp.Items {
		p.Items = append(p.Items, ItemChance{ItemID: yi.Item, Probability: yi.Probability})
	}
	return p
}
