// Package manifest reads batch command files: a YAML or JSON list of
// commands with an optional parallel hint. Files are validated against a
// JSON Schema before use so a malformed manifest fails loudly instead of
// half-running.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Manifest is a batch of independent commands.
type Manifest struct {
	Parallel bool      `yaml:"parallel" json:"parallel"`
	Commands []Command `yaml:"commands" json:"commands"`
}

type Command struct {
	Run string `yaml:"run" json:"run"`
	// Verify defaults to true; set false for commands whose empty
	// responses are normal.
	Verify *bool `yaml:"verify,omitempty" json:"verify,omitempty"`
}

func (c Command) Verified() bool {
	return c.Verify == nil || *c.Verify
}

const schemaBody = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["commands"],
  "additionalProperties": false,
  "properties": {
    "parallel": {"type": "boolean"},
    "commands": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["run"],
        "additionalProperties": false,
        "properties": {
          "run": {"type": "string", "minLength": 1},
          "verify": {"type": "boolean"}
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("manifest.schema.json", schemaBody)

// Load reads and validates a manifest. The format is chosen by extension:
// .json is parsed as JSON, everything else as YAML.
func Load(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	// Normalize to JSON-shaped generic data for schema validation.
	var generic any
	if filepath.Ext(path) == ".json" {
		if err := json.Unmarshal(raw, &generic); err != nil {
			return Manifest{}, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		var y any
		if err := yaml.Unmarshal(raw, &y); err != nil {
			return Manifest{}, fmt.Errorf("%s: %w", path, err)
		}
		jb, err := json.Marshal(y)
		if err != nil {
			return Manifest{}, fmt.Errorf("%s: %w", path, err)
		}
		if err := json.Unmarshal(jb, &generic); err != nil {
			return Manifest{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := schema.Validate(generic); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}

	var m Manifest
	jb, err := json.Marshal(generic)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(jb, &m); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
