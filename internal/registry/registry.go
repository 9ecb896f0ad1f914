// Package registry loads the set of stadiums to collect, either the built-in
// MLB list or a YAML file supplied through LOCATIONS_FILE.
package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"gopkg.in/yaml.v3"
)

// file mirrors the YAML layout:
//
//	locations:
//	  - name: Oracle Park
//	    lat: 37.778572
//	    lon: -122.389717
//	overrides:
//	  Oracle Park: 72494
type file struct {
	Locations []domain.Location     `yaml:"locations"`
	Overrides map[string]stationRef `yaml:"overrides"`
}

// stationRef accepts both quoted and bare numeric station ids and keeps the
// literal text, so 72494 and "72494" resolve to the same station.
type stationRef string

func (s *stationRef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: station id must be a scalar", n.Line)
	}
	*s = stationRef(strings.TrimSpace(n.Value))
	return nil
}

// Load returns the built-in registry when path is empty, otherwise the
// registry described by the YAML file at path.
func Load(path string) (domain.Registry, error) {
	if path == "" {
		return domain.DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Registry{}, fmt.Errorf("read locations file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML registry document.
func Parse(data []byte) (domain.Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Registry{}, fmt.Errorf("parse locations file: %w", err)
	}
	if len(f.Locations) == 0 {
		return domain.Registry{}, errors.New("locations file defines no locations")
	}

	reg := domain.Registry{
		Locations: f.Locations,
		Overrides: make(map[string]domain.StationID, len(f.Overrides)),
	}
	for name, ref := range f.Overrides {
		reg.Overrides[name] = domain.StationID(ref)
	}
	if err := reg.Validate(); err != nil {
		return domain.Registry{}, fmt.Errorf("invalid locations file: %w", err)
	}
	return reg, nil
}
