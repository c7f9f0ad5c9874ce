// Package schema describes which node types and relationships the
// extraction step is allowed to produce.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed biomedical.yaml
var biomedicalYAML []byte

// Triple restricts a relationship type to a source and target node type.
type Triple struct {
	Source string `yaml:"source" json:"source"`
	Type   string `yaml:"type" json:"type"`
	Target string `yaml:"target" json:"target"`
}

// Schema is an extraction vocabulary. When Relationships is non-empty, a
// relationship is only allowed if its (source type, type, target type)
// matches one of the triples.
type Schema struct {
	Name              string   `yaml:"name" json:"name"`
	NodeTypes         []string `yaml:"node_types" json:"node_types"`
	RelationshipTypes []string `yaml:"relationship_types" json:"relationship_types"`
	Relationships     []Triple `yaml:"relationships" json:"relationships"`
}

// Default returns the general purpose schema.
func Default() *Schema {
	return &Schema{
		Name: "general",
		NodeTypes: []string{
			"Person", "Organization", "Location", "Event", "Concept", "Product", "Technology",
		},
		RelationshipTypes: []string{
			"WORKS_AT", "LOCATED_IN", "RELATED_TO", "PART_OF", "USES", "CREATED", "MANAGES",
		},
	}
}

// Biomedical returns the built-in biomedical schema.
func Biomedical() *Schema {
	s, err := Parse(biomedicalYAML)
	if err != nil {
		panic(fmt.Sprintf("schema: embedded biomedical schema is invalid: %v", err))
	}
	return s
}

// Parse decodes a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load resolves a schema by name ("general", "biomedical") or reads it from
// a YAML file.
func Load(nameOrPath string) (*Schema, error) {
	switch strings.ToLower(strings.TrimSpace(nameOrPath)) {
	case "", "general", "default":
		return Default(), nil
	case "biomedical":
		return Biomedical(), nil
	}

	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", nameOrPath, err)
	}
	return Parse(data)
}

// Validate checks that the schema is usable for extraction.
func (s *Schema) Validate() error {
	if len(s.NodeTypes) == 0 {
		return fmt.Errorf("schema %q has no node types", s.Name)
	}
	for _, t := range s.Relationships {
		if _, ok := s.NodeType(t.Source); !ok {
			return fmt.Errorf("schema %q: relationship %s uses unknown source type %q", s.Name, t.Type, t.Source)
		}
		if _, ok := s.NodeType(t.Target); !ok {
			return fmt.Errorf("schema %q: relationship %s uses unknown target type %q", s.Name, t.Type, t.Target)
		}
	}
	return nil
}

// NodeType returns the canonical spelling of t if it is allowed.
// Matching ignores case.
func (s *Schema) NodeType(t string) (string, bool) {
	for _, nt := range s.NodeTypes {
		if strings.EqualFold(nt, t) {
			return nt, true
		}
	}
	return "", false
}

// AllowedRelationshipTypes returns every relationship type of the schema,
// including those only named by triples, without duplicates.
func (s *Schema) AllowedRelationshipTypes() []string {
	out := slices.Clone(s.RelationshipTypes)
	for _, t := range s.Relationships {
		if !slices.Contains(out, t.Type) {
			out = append(out, t.Type)
		}
	}
	return out
}

// AllowsRelationship reports whether a relationship of relType between the
// given node types is allowed.
func (s *Schema) AllowsRelationship(sourceType, relType, targetType string) bool {
	if len(s.Relationships) > 0 {
		for _, t := range s.Relationships {
			if t.Type == relType &&
				strings.EqualFold(t.Source, sourceType) &&
				strings.EqualFold(t.Target, targetType) {
				return true
			}
		}
		return slices.Contains(s.RelationshipTypes, relType)
	}
	if len(s.RelationshipTypes) == 0 {
		return true
	}
	return slices.Contains(s.RelationshipTypes, relType)
}

// Describe renders the schema as prompt text.
func (s *Schema) Describe() string {
	var b strings.Builder
	b.WriteString("Allowed node types: ")
	b.WriteString(strings.Join(s.NodeTypes, ", "))
	b.WriteString("\n")

	if len(s.Relationships) > 0 {
		b.WriteString("Allowed relationships (source type, relationship, target type):\n")
		for _, t := range s.Relationships {
			fmt.Fprintf(&b, "- (%s, %s, %s)\n", t.Source, t.Type, t.Target)
		}
		if len(s.RelationshipTypes) > 0 {
			b.WriteString("Additional relationship types between any node types: ")
			b.WriteString(strings.Join(s.RelationshipTypes, ", "))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString("Allowed relationship types: ")
	b.WriteString(strings.Join(s.AllowedRelationshipTypes(), ", "))
	b.WriteString("\n")
	return b.String()
}
