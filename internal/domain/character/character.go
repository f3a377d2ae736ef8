// Package character holds the static persona roster. Characters are reference data: they are
// loaded once from the embedded roster and never written by the service.
package character

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed characters.yaml
var rosterYAML []byte

// Character is a persona the user can chat with.
type Character struct {
	Slug              string   `yaml:"slug" json:"slug"`
	Name              string   `yaml:"name" json:"name"`
	AvatarURL         string   `yaml:"avatar_url" json:"avatar_url"`
	Description       string   `yaml:"description" json:"description"`
	SystemPrompt      string   `yaml:"system_prompt" json:"-"`
	KickstartMessages []string `yaml:"kickstart_messages" json:"kickstart_messages"`
}

// Catalog resolves characters by slug.
type Catalog interface {
	Get(slug string) (Character, bool)
	All() []Character
}

// Roster is the in-memory Catalog backed by the embedded YAML file.
type Roster struct {
	ordered []Character
	bySlug  map[string]Character
}

var _ Catalog = (*Roster)(nil)

// NewRoster parses the embedded roster.
func NewRoster() (*Roster, error) {
	return ParseRoster(rosterYAML)
}

// ParseRoster parses a roster document and rejects duplicate or incomplete entries.
func ParseRoster(data []byte) (*Roster, error) {
	var doc struct {
		Characters []Character `yaml:"characters"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse character roster: %w", err)
	}

	roster := &Roster{bySlug: make(map[string]Character, len(doc.Characters))}
	for _, c := range doc.Characters {
		c.Slug = strings.TrimSpace(c.Slug)
		if c.Slug == "" || c.Name == "" || strings.TrimSpace(c.SystemPrompt) == "" {
			return nil, fmt.Errorf("character %q is missing slug, name or system prompt", c.Slug)
		}
		if _, dup := roster.bySlug[c.Slug]; dup {
			return nil, fmt.Errorf("duplicate character slug %q", c.Slug)
		}
		roster.bySlug[c.Slug] = c
		roster.ordered = append(roster.ordered, c)
	}
	if len(roster.ordered) == 0 {
		return nil, fmt.Errorf("character roster is empty")
	}
	return roster, nil
}

func (r *Roster) Get(slug string) (Character, bool) {
	c, ok := r.bySlug[slug]
	return c, ok
}

// All returns characters in roster order.
func (r *Roster) All() []Character {
	out := make([]Character, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// IsValidSlug reports whether slug names a known character.
func (r *Roster) IsValidSlug(slug string) bool {
	_, ok := r.bySlug[slug]
	return ok
}
