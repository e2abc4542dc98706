// Package decl loads deskgraph scenes from TOML or YAML documents.
//
// A document lists elements in creation order. Containers must appear before
// the elements they contain, and combine operands before the combine shape.
//
//	[[element]]
//	kind = "shape"
//	id = "panel"
//	[element.props]
//	width = 200
//	height = 80
//	fillColor = "#223"
//
//	[[group]]
//	group = "meters"
//	[group.props]
//	show = false
package decl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/deskgraph"
)

// Format is a document encoding.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return 0, false
}

// ErrUnknownKind is returned for an element whose kind is not a deskgraph
// element kind.
var ErrUnknownKind = errors.New("unknown element kind")

// Element is one element declaration.
type Element struct {
	Kind  string         `toml:"kind" yaml:"kind"`
	ID    string         `toml:"id" yaml:"id"`
	Props map[string]any `toml:"props" yaml:"props"`
}

// GroupPatch sets properties on every member of a group.
type GroupPatch struct {
	Group string         `toml:"group" yaml:"group"`
	Props map[string]any `toml:"props" yaml:"props"`
}

// Document is a parsed scene description.
type Document struct {
	Elements []Element    `toml:"element" yaml:"elements"`
	Groups   []GroupPatch `toml:"group" yaml:"groups"`
	Remove   []string     `toml:"remove" yaml:"remove"`
}

// Parse decodes data in the given format. Unknown top-level keys are errors
// so typos do not silently drop elements.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decl: parse toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decl: parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("decl: unsupported format %d", format)
	}
	for n, el := range doc.Elements {
		if _, ok := deskgraph.ParseKind(el.Kind); !ok {
			return nil, fmt.Errorf("decl: element %d (%q): kind %q: %w", n, el.ID, el.Kind, ErrUnknownKind)
		}
	}
	return &doc, nil
}

// Apply creates or updates every element in document order, then applies
// group patches and removals. It stops at the first error; elements applied
// before it stay in the scene.
func (d *Document) Apply(s *deskgraph.Scene) error {
	for _, el := range d.Elements {
		kind, ok := deskgraph.ParseKind(el.Kind)
		if !ok {
			return fmt.Errorf("decl: element %q: kind %q: %w", el.ID, el.Kind, ErrUnknownKind)
		}
		if _, err := s.AddElement(kind, el.ID, deskgraph.Props(el.Props)); err != nil {
			return fmt.Errorf("decl: element %q: %w", el.ID, err)
		}
	}
	for _, g := range d.Groups {
		if err := s.SetPropertiesByGroup(g.Group, deskgraph.Props(g.Props)); err != nil {
			return fmt.Errorf("decl: group %q: %w", g.Group, err)
		}
	}
	for _, id := range d.Remove {
		s.RemoveElement(id)
	}
	return nil
}

// IDs returns the ids declared by d, in order.
func (d *Document) IDs() []string {
	ids := make([]string, 0, len(d.Elements))
	for _, el := range d.Elements {
		ids = append(ids, el.ID)
	}
	return ids
}
