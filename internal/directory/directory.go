// internal/directory/directory.go
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CentralIDPrefix marks a central-jurisdiction office identifier. Region
// offices carry region-specific prefixes, so jurisdiction class can be
// derived from the id alone.
const CentralIDPrefix = "C"

// Office is one government office capable of receiving an RTI request.
type Office struct {
	ID         string   `json:"id"`
	Department string   `json:"department"`
	PIOName    string   `json:"pio_name"`
	Email      string   `json:"email"`
	Address    string   `json:"address"`
	Portal     string   `json:"portal"`
	Categories []string `json:"categories"`
}

// IsCentral reports whether the office has nationwide jurisdiction.
func (o Office) IsCentral() bool {
	return strings.HasPrefix(o.ID, CentralIDPrefix)
}

// Directory is the read-only PIO lookup structure. It is loaded once at
// process start and never mutated, so concurrent readers need no locking.
type Directory struct {
	Central []Office            `json:"central"`
	State   map[string][]Office `json:"state"`
}

// Load reads a PIO directory from a JSON file.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pio directory: %w", err)
	}
	var dir Directory
	if err := json.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("parse pio directory: %w", err)
	}
	if len(dir.Central) == 0 {
		return nil, fmt.Errorf("pio directory %s has no central offices", path)
	}
	return &dir, nil
}

// HasRegion reports whether any offices are registered for the region.
func (d *Directory) HasRegion(region string) bool {
	return len(d.State[region]) > 0
}

// RegionOffices returns the registered offices for a region, in registry order.
func (d *Directory) RegionOffices(region string) []Office {
	return d.State[region]
}

// CentralByID returns the central office with the given id.
func (d *Directory) CentralByID(id string) (Office, bool) {
	for _, o := range d.Central {
		if o.ID == id {
			return o, true
		}
	}
	return Office{}, false
}

// Regions returns the set of region names with registered offices.
func (d *Directory) Regions() []string {
	regions := make([]string, 0, len(d.State))
	for r := range d.State {
		regions = append(regions, r)
	}
	return regions
}

// CategoryInfo configures how one request category maps onto offices.
type CategoryInfo struct {
	Keywords     []string `json:"keywords"`
	CentralPIOID string   `json:"central_pio_id"`
}

// Departments is the category-side reference data: per-category keyword sets,
// preferred central offices, the region-local category set, the guaranteed
// fallback map, and the filing fee schedule.
type Departments struct {
	Categories      map[string]CategoryInfo `json:"categories"`
	RegionLocal     []string                `json:"region_local"`
	FallbackCentral map[string]string       `json:"fallback_central"`
	DefaultFallback string                  `json:"default_fallback"`
	FilingFee       struct {
		General int `json:"general"`
	} `json:"filing_fee"`
}

// LoadDepartments reads category configuration from a JSON file.
func LoadDepartments(path string) (*Departments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read departments config: %w", err)
	}
	var deps Departments
	if err := json.Unmarshal(data, &deps); err != nil {
		return nil, fmt.Errorf("parse departments config: %w", err)
	}
	return &deps, nil
}

// LoadStateAliases reads the place-name alias table from a JSON file. Keys
// are lowercase city, district, and shorthand names; values are the region
// names they normalize to. The table ships with the directory so new places
// are a data change, not a code change.
func LoadStateAliases(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state aliases: %w", err)
	}
	var aliases map[string]string
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parse state aliases: %w", err)
	}
	if len(aliases) == 0 {
		return nil, fmt.Errorf("state aliases %s has no entries", path)
	}
	for alias, region := range aliases {
		if strings.TrimSpace(alias) == "" || strings.TrimSpace(region) == "" {
			return nil, fmt.Errorf("state aliases %s has a blank entry", path)
		}
		if alias != strings.ToLower(alias) {
			return nil, fmt.Errorf("state alias %q is not lowercase", alias)
		}
	}
	return aliases, nil
}

// IsRegionLocal reports whether a category is served by region offices first.
func (d *Departments) IsRegionLocal(category string) bool {
	for _, c := range d.RegionLocal {
		if c == category {
			return true
		}
	}
	return false
}
