package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ParseDocument deserializes a workflow document from JSON. A document with
// an empty ID is assigned a fresh one so downstream metadata is never blank.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow document: %w", err)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return &doc, nil
}

// ParseDocumentYAML deserializes a workflow document from YAML.
func ParseDocumentYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow document: %w", err)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return &doc, nil
}

// LoadDocument reads and parses a document file. Files ending in .yaml or
// .yml are parsed as YAML, everything else as JSON.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow document: %w", err)
	}
	if isYAMLPath(path) {
		return ParseDocumentYAML(data)
	}
	return ParseDocument(data)
}

func isYAMLPath(path string) bool {
	n := len(path)
	return (n > 5 && path[n-5:] == ".yaml") || (n > 4 && path[n-4:] == ".yml")
}

// ToJSON serializes the document with indentation.
func (d *Document) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow document: %w", err)
	}
	return data, nil
}

// ToYAML serializes the document as YAML.
func (d *Document) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow document: %w", err)
	}
	return data, nil
}

// Node returns the node with the given ID, if present.
func (d *Document) Node(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// Trigger returns the first trigger node, if present.
func (d *Document) Trigger() (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].IsTrigger() {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}
