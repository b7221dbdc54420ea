package export

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/coursedraft/internal/outline"
)

// JSON writes the course document as indented JSON.
type JSON struct{}

func (JSON) Format() string      { return "json" }
func (JSON) Extension() string   { return ".json" }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Encode(w io.Writer, c *outline.Course) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// YAML writes the course document using its JSON field names.
type YAML struct{}

func (YAML) Format() string      { return "yaml" }
func (YAML) Extension() string   { return ".yaml" }
func (YAML) ContentType() string { return "application/yaml" }

func (YAML) Encode(w io.Writer, c *outline.Course) error {
	// Round-trip through JSON so keys match the json tags.
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
