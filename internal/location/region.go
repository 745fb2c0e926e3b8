// internal/location/region.go
package location

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed regions.json
var defaultRegions []byte

const regionTableSchema = `{
  "type": "object",
  "required": ["countries", "states"],
  "properties": {
    "countries": {
      "type": "object",
      "propertyNames": {"pattern": "^[A-Za-z]{2,3}$"},
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "states": {
      "type": "object",
      "propertyNames": {"pattern": "^[A-Za-z0-9]{1,4}$"},
      "additionalProperties": {"type": "string", "minLength": 1}
    }
  }
}`

// RegionTable maps administrative region codes to canonical display names.
// It is read-only once built and safe to share between goroutines.
type RegionTable struct {
	countries map[string]string
	states    map[string]string

	// lowercased canonical name -> canonical name
	countryNames map[string]string
	stateNames   map[string]string
}

type regionFile struct {
	Countries map[string]string `json:"countries"`
	States    map[string]string `json:"states"`
}

// NewRegionTable builds a table from code->name maps. Codes are stored
// uppercase and names are trimmed.
func NewRegionTable(countries, states map[string]string) *RegionTable {
	t := &RegionTable{
		countries:    make(map[string]string, len(countries)),
		states:       make(map[string]string, len(states)),
		countryNames: make(map[string]string, len(countries)),
		stateNames:   make(map[string]string, len(states)),
	}
	for code, name := range countries {
		name = strings.TrimSpace(name)
		t.countries[strings.ToUpper(strings.TrimSpace(code))] = name
		t.countryNames[strings.ToLower(name)] = name
	}
	for code, name := range states {
		name = strings.TrimSpace(name)
		t.states[strings.ToUpper(strings.TrimSpace(code))] = name
		t.stateNames[strings.ToLower(name)] = name
	}
	return t
}

// DefaultRegionTable returns the built-in table: Nigerian states and the
// FCT keyed by their ISO 3166-2:NG suffixes, plus common country codes.
func DefaultRegionTable() *RegionTable {
	t, err := ParseRegionTable(defaultRegions)
	if err != nil {
		panic(fmt.Sprintf("location: embedded region table is invalid: %v", err))
	}
	return t
}

// LoadRegionTable reads a region table from a JSON file. An empty path
// returns the built-in table.
func LoadRegionTable(path string) (*RegionTable, error) {
	if path == "" {
		return DefaultRegionTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region table %s: %w", path, err)
	}
	t, err := ParseRegionTable(data)
	if err != nil {
		return nil, fmt.Errorf("region table %s: %w", path, err)
	}
	return t, nil
}

// ParseRegionTable validates data against the region table schema and
// builds the table.
func ParseRegionTable(data []byte) (*RegionTable, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(regionTableSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
	}

	var f regionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode region table: %w", err)
	}
	return NewRegionTable(f.Countries, f.States), nil
}

// CountryName resolves a country code or canonical name. The input is
// expected to be trimmed.
func (t *RegionTable) CountryName(v string) (string, bool) {
	if name, ok := t.countries[strings.ToUpper(v)]; ok {
		return name, true
	}
	name, ok := t.countryNames[strings.ToLower(v)]
	return name, ok
}

// StateName resolves a state code or canonical name.
func (t *RegionTable) StateName(v string) (string, bool) {
	if name, ok := t.states[strings.ToUpper(v)]; ok {
		return name, true
	}
	name, ok := t.stateNames[strings.ToLower(v)]
	return name, ok
}

// Len reports the number of country and state entries.
func (t *RegionTable) Len() (countries, states int) {
	return len(t.countries), len(t.states)
}
