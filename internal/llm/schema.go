package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema compiled once at construction.
type Schema struct {
	// Name is sent as the schema name where the backend wants one.
	Name        string
	Description string
	Definition  map[string]any

	// Example is a document that satisfies the schema. The mock provider
	// replies with it when it has nothing queued.
	Example json.RawMessage

	compiled *jsonschema.Schema
}

// NewSchema compiles def. It fails when def is not a valid schema or the
// example does not satisfy it.
func NewSchema(name, description string, def map[string]any, example json.RawMessage) (*Schema, error) {
	// The compiler wants decoded JSON values, not Go maps of mixed types.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", name, err)
	}

	url := "schema://" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	s := &Schema{Name: name, Description: description, Definition: def, Example: example, compiled: compiled}
	if example != nil {
		if err := s.Validate(example); err != nil {
			return nil, fmt.Errorf("schema %s example: %w", name, err)
		}
	}
	return s, nil
}

// MustSchema is NewSchema for package-level schemas.
func MustSchema(name, description string, def map[string]any, example json.RawMessage) *Schema {
	s, err := NewSchema(name, description, def, example)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks raw against the schema. A nil schema accepts anything.
func (s *Schema) Validate(raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &Error{Kind: KindInvalid, Content: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &Error{Kind: KindInvalid, Content: raw, Err: fmt.Errorf("schema %s: %w", s.Name, err)}
	}
	return nil
}
