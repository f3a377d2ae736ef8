package model

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var catalogYAML []byte

// Model is an upstream model the user may select.
type Model struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Default     bool   `yaml:"-" json:"default"`
}

// Catalog is the allow-list of selectable models plus the default.
type Catalog struct {
	models    []Model
	defaultID string
}

// NewCatalog builds the allow-list. An empty allowed list admits every known model; ids in allowed that
// the embedded catalog does not describe are still admitted with their id as display name.
func NewCatalog(defaultID string, allowed []string) (*Catalog, error) {
	var doc struct {
		Models []Model `yaml:"models"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse model catalog: %w", err)
	}

	var models []Model
	if len(allowed) == 0 {
		models = doc.Models
	} else {
		for _, id := range allowed {
			idx := slices.IndexFunc(doc.Models, func(m Model) bool { return m.ID == id })
			if idx >= 0 {
				models = append(models, doc.Models[idx])
				continue
			}
			models = append(models, Model{ID: id, Name: id})
		}
	}

	catalog := &Catalog{defaultID: defaultID}
	for _, m := range models {
		m.Default = m.ID == defaultID
		catalog.models = append(catalog.models, m)
	}
	if !catalog.IsAllowed(defaultID) {
		return nil, fmt.Errorf("default model %q is not allowed", defaultID)
	}
	return catalog, nil
}

// Resolve returns the model id to use for a request: the default for an empty selector, the selector
// itself when allow-listed, and false otherwise.
func (c *Catalog) Resolve(selector string) (string, bool) {
	if selector == "" {
		return c.defaultID, true
	}
	return selector, c.IsAllowed(selector)
}

func (c *Catalog) IsAllowed(id string) bool {
	return slices.ContainsFunc(c.models, func(m Model) bool { return m.ID == id })
}

func (c *Catalog) DefaultID() string {
	return c.defaultID
}

// IDs returns the allow-listed ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.models))
	for _, m := range c.models {
		ids = append(ids, m.ID)
	}
	return ids
}

func (c *Catalog) List() []Model {
	return slices.Clone(c.models)
}
