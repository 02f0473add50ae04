package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema compiled once at construction.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any

	compiled *jsonschema.Schema
}

// NewSchema compiles def.
func NewSchema(name, description string, def map[string]any) (*Schema, error) {
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", name, err)
	}

	loc := "mem://nexus/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(loc, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	return &Schema{Name: name, Description: description, Definition: def, compiled: compiled}, nil
}

// MustSchema is NewSchema for package-level schema literals.
func MustSchema(name, description string, def map[string]any) *Schema {
	s, err := NewSchema(name, description, def)
	if err != nil {
		panic(err)
	}
	return s
}

// Check reports whether raw is a JSON document conforming to the schema.
func (s *Schema) Check(raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: not JSON: %w", s.Name, err)
	}
	if err := s.compiled.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	return nil
}

// conform checks content against the request schema, attributing failures
// to the provider.
func conform(provider string, req Request, content json.RawMessage) error {
	if req.Schema == nil {
		return nil
	}
	if err := req.Schema.Check(content); err != nil {
		return invalidResponse(provider, req.Purpose, err)
	}
	return nil
}
