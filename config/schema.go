package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for ninjawatch configuration files.
// Extension sections are not reflected from Config; the ones ninjawatch knows
// about are declared as open objects so that typos in top-level keys are
// still rejected.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		DoNotReference:            true,
		FieldNameTag:              "yaml",
	}

	type Document struct {
		Driver    string                    `yaml:"driver,omitempty" jsonschema:"description=Build driver executable (default: ninja)"`
		Watcher   WatcherConfig             `yaml:"watcher,omitempty" jsonschema:"description=How ninjawatch blocks until a dependency changes"`
		Timing    TimingConfig              `yaml:"timing,omitempty" jsonschema:"description=Delays used by the rebuild loop"`
		Languages map[string]LanguageConfig `yaml:"languages,omitempty" jsonschema:"description=Extra watched extensions and special files per language"`
		Exclude   []string                  `yaml:"exclude,omitempty" jsonschema:"description=Patterns excluded from the special file search"`
		Logging   map[string]interface{}    `yaml:"logging,omitempty" jsonschema:"description=Logging settings"`
	}

	schema := r.Reflect(&Document{})
	schema.Title = "ninjawatch configuration"
	schema.Description = "Schema for ninjawatch.yml and ninjawatch.toml."

	return json.MarshalIndent(schema, "", "  ")
}
