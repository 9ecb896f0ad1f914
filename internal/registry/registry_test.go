package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
locations:
  - name: Oracle Park
    lat: 37.778572
    lon: -122.389717
  - name: Guaranteed Rate Field
    lat: 41.830017
    lon: -87.634598
  - name: Fenway Park
    lat: 42.346268
    lon: -71.095764
overrides:
  Oracle Park: 72494
  Guaranteed Rate Field: "KLXT0"
`

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRegistry(), reg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stadiums.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	reg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, reg.Locations, 3)
	assert.Equal(t, "Oracle Park", reg.Locations[0].Name)
	assert.Equal(t, "Fenway Park", reg.Locations[2].Name)
	assert.InDelta(t, -71.095764, reg.Locations[2].Lon, 1e-9)

	id, ok := reg.Override("Oracle Park")
	assert.True(t, ok)
	assert.Equal(t, domain.StationID("72494"), id)

	id, ok = reg.Override("Guaranteed Rate Field")
	assert.True(t, ok)
	assert.Equal(t, domain.StationID("KLXT0"), id)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read locations file")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"malformed", "locations: [", "parse locations file"},
		{"no locations", "overrides: {}", "no locations"},
		{"unknown override", "locations:\n  - name: A\noverrides:\n  B: 1\n", "unknown location"},
		{"non-scalar override", "locations:\n  - name: A\noverrides:\n  A: [1, 2]\n", "scalar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
