// Package reference serves the static city and district lists the intake
// form offers and the schema checks against.
package reference

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Directory answers which places the form accepts.
type Directory interface {
	HomeCity() string
	Cities() []string
	Districts(city string) []string
	// DistrictAllowed reports whether district is acceptable for city. Only
	// the home city has a closed list; other cities take free text.
	DistrictAllowed(city, district string) bool
}

//go:embed places.yaml
var placesYAML []byte

type placesFile struct {
	HomeCity  string              `yaml:"home_city"`
	Cities    []string            `yaml:"cities"`
	Districts map[string][]string `yaml:"districts"`
}

// Static is a Directory loaded from YAML.
type Static struct {
	homeCity  string
	cities    []string
	districts map[string][]string
	index     map[string]map[string]struct{}
}

var _ Directory = (*Static)(nil)

// Default returns the embedded directory.
func Default() *Static {
	dir, err := Parse(placesYAML)
	if err != nil {
		panic("reference: embedded places.yaml is invalid: " + err.Error())
	}
	return dir
}

// Parse builds a directory from YAML.
func Parse(data []byte) (*Static, error) {
	var f placesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse places: %w", err)
	}
	if f.HomeCity == "" {
		return nil, fmt.Errorf("parse places: home_city is required")
	}
	if len(f.Districts[f.HomeCity]) == 0 {
		return nil, fmt.Errorf("parse places: no districts for home city %q", f.HomeCity)
	}

	index := make(map[string]map[string]struct{}, len(f.Districts))
	for city, list := range f.Districts {
		set := make(map[string]struct{}, len(list))
		for _, d := range list {
			set[d] = struct{}{}
		}
		index[city] = set
	}

	return &Static{
		homeCity:  f.HomeCity,
		cities:    f.Cities,
		districts: f.Districts,
		index:     index,
	}, nil
}

func (s *Static) HomeCity() string { return s.homeCity }

func (s *Static) Cities() []string {
	return append([]string(nil), s.cities...)
}

// Districts returns the districts of city sorted for display, or nil for a
// city without a closed list.
func (s *Static) Districts(city string) []string {
	list := append([]string(nil), s.districts[city]...)
	sort.Strings(list)
	return list
}

func (s *Static) DistrictAllowed(city, district string) bool {
	if city != s.homeCity {
		return true
	}
	_, ok := s.index[city][district]
	return ok
}
