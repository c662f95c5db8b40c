package profile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// settingsSchema guards the profiles blob against hand-edits that would
// otherwise surface as confusing zero values deep in the transcription flow.
const settingsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["profiles", "active_id"],
  "properties": {
    "profiles": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id":       {"type": "string", "minLength": 1},
          "name":     {"type": "string", "minLength": 1},
          "base_url": {"type": "string"},
          "api_key":  {"type": "string"},
          "model":    {"type": "string"},
          "prompt":   {"type": "string"}
        }
      }
    },
    "active_id": {"type": "string"}
  }
}`

var compiledSchema = jsonschema.MustCompileString("profiles.schema.json", settingsSchema)

// ValidateSettingsJSON checks a raw settings blob against the schema.
func ValidateSettingsJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return err
	}
	return nil
}
