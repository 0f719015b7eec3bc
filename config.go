package jsonfield

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// EditorMode selects the interactive editor bound to a field's textarea.
type EditorMode string

const (
	EditorNone  EditorMode = "none"
	EditorTable EditorMode = "table"
	EditorText  EditorMode = "text"
	EditorTree  EditorMode = "tree"
)

// DefaultEditorMode is used when a field does not choose one.
const DefaultEditorMode = EditorTree

// Valid reports whether m is a known editor mode. The empty mode is valid
// and means DefaultEditorMode.
func (m EditorMode) Valid() bool {
	switch m {
	case "", EditorNone, EditorTable, EditorText, EditorTree:
		return true
	}
	return false
}

// FieldConfig is the definition of one JSON field.
type FieldConfig struct {
	// Key identifies the field in the metadata store.
	Key string `yaml:"key"`
	// Name is an optional alias accepted wherever Key is.
	Name string `yaml:"name,omitempty"`
	// Label is shown next to the editor.
	Label string `yaml:"label,omitempty"`
	// EditorMode is the editor widget mode; empty means DefaultEditorMode.
	EditorMode EditorMode `yaml:"editor_mode,omitempty"`
	// EditorHeight is the editor height in pixels; zero leaves it to the stylesheet.
	EditorHeight int `yaml:"editor_height,omitempty"`
	// DefaultValue is JSON text used while the stored value is empty.
	DefaultValue string `yaml:"default_value,omitempty"`
}

func (c *FieldConfig) editorMode() EditorMode {
	if c.EditorMode != "" {
		return c.EditorMode
	}
	return DefaultEditorMode
}

// Validate checks the editor settings.
func (c *FieldConfig) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("jsonfield: field without key: %w", ErrInvalidConfig)
	}
	if !c.EditorMode.Valid() {
		return fmt.Errorf("jsonfield: field %q: editor mode %q: %w", c.Key, c.EditorMode, ErrInvalidConfig)
	}
	if c.EditorHeight < 0 {
		return fmt.Errorf("jsonfield: field %q: editor height %d: %w", c.Key, c.EditorHeight, ErrInvalidConfig)
	}
	return nil
}

// FieldGroup is a named set of field definitions, as kept in YAML:
//
//	title: Product data
//	fields:
//	  - key: field_specs
//	    name: specs
//	    editor_mode: table
//	    editor_height: 400
//	    default_value: '{"sizes": []}'
type FieldGroup struct {
	Title  string        `yaml:"title"`
	Fields []FieldConfig `yaml:"fields"`
}

// LoadFieldGroup decodes and validates a YAML field group.
func LoadFieldGroup(r io.Reader) (*FieldGroup, error) {
	var g FieldGroup
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil && err != io.EOF {
		return nil, fmt.Errorf("jsonfield: decoding field group: %w", err)
	}
	seen := make(map[string]bool, len(g.Fields))
	for i := range g.Fields {
		f := &g.Fields[i]
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if seen[f.Key] {
			return nil, fmt.Errorf("jsonfield: duplicate field %q: %w", f.Key, ErrInvalidConfig)
		}
		seen[f.Key] = true
	}
	return &g, nil
}

// Lookup finds a field by key or name.
func (g *FieldGroup) Lookup(keyOrName string) (*FieldConfig, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Fields {
		f := &g.Fields[i]
		if f.Key == keyOrName || (f.Name != "" && f.Name == keyOrName) {
			return f, true
		}
	}
	return nil, false
}
