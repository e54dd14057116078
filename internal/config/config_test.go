// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.85, cfg.Admissibility.AuthorityThreshold)
	assert.Equal(t, 0.30, cfg.Matching.WindowTolerance)
	assert.Equal(t, "MXN", cfg.Semantics.DomesticCurrency)
	assert.Len(t, cfg.Fields.Mandatory, 42)
	assert.NotEmpty(t, cfg.Admissibility.Authorities)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/oficio.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Matching, cfg.Matching)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oficio.yaml")
	content := `
matching:
  default_threshold: 0.9
admissibility:
  authority_threshold: 0.75
semantics:
  domestic_currency: USD
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Matching.DefaultThreshold)
	assert.Equal(t, 0.75, cfg.Admissibility.AuthorityThreshold)
	assert.Equal(t, "USD", cfg.Semantics.DomesticCurrency)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.30, cfg.Matching.WindowTolerance)
	assert.Len(t, cfg.Fields.Mandatory, 42)
}

func TestLoad_RejectsInvalidRanges(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"threshold above one", "matching:\n  default_threshold: 1.5\n"},
		{"review floor above threshold", "matching:\n  review_floor: 0.95\n"},
		{"zero window tolerance", "matching:\n  window_tolerance: 0\n"},
		{"empty authorities", "admissibility:\n  authorities: []\n"},
		{"empty checklist", "fields:\n  mandatory: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("matching: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
