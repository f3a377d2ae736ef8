package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gemini = "google/gemini-2.0-flash-001"

func TestNewCatalogAllModels(t *testing.T) {
	catalog, err := NewCatalog(gemini, nil)
	require.NoError(t, err)

	assert.Len(t, catalog.List(), 4)
	assert.Equal(t, gemini, catalog.DefaultID())
	assert.True(t, catalog.List()[0].Default)
	assert.False(t, catalog.List()[1].Default)
}

func TestResolve(t *testing.T) {
	catalog, err := NewCatalog(gemini, []string{gemini, "openai/gpt-4o-mini"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		selector string
		want     string
		ok       bool
	}{
		{"empty uses default", "", gemini, true},
		{"allowed", "openai/gpt-4o-mini", "openai/gpt-4o-mini", true},
		{"known but not allowed", "anthropic/claude-3.5-sonnet", "anthropic/claude-3.5-sonnet", false},
		{"unknown", "acme/unknown", "acme/unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := catalog.Resolve(tt.selector)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
	assert.Equal(t, []string{gemini, "openai/gpt-4o-mini"}, catalog.IDs())
}

func TestNewCatalogRejectsDisallowedDefault(t *testing.T) {
	_, err := NewCatalog("acme/unknown", nil)
	assert.Error(t, err)
}

func TestNewCatalogAdmitsUndescribedIDs(t *testing.T) {
	catalog, err := NewCatalog("acme/custom", []string{"acme/custom"})
	require.NoError(t, err)
	assert.Equal(t, "acme/custom", catalog.List()[0].Name)
}
