// Package alert serves the static city list and emergency alert catalog.
package alert

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"citypulse/internal/domain/entity"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Cities []string     `yaml:"cities"`
	Alerts []alertEntry `yaml:"alerts"`
}

type alertEntry struct {
	ID          string    `yaml:"id"`
	City        string    `yaml:"city"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Severity    string    `yaml:"severity"`
	Type        string    `yaml:"type"`
	Color       string    `yaml:"color"`
	Timestamp   time.Time `yaml:"timestamp"`
}

// Catalog is an immutable, in-memory list of cities and alerts.
type Catalog struct {
	cities []string
	alerts []entity.Alert
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from a YAML file.
// The path comes from configuration, not from request input.
func LoadFile(path string) (*Catalog, error) {
	// #nosec G304 -- path is operator-provided configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alert catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alert catalog: %w", err)
	}
	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("validate alert catalog: %w", err)
	}

	c := &Catalog{
		cities: make([]string, 0, len(f.Cities)),
		alerts: make([]entity.Alert, 0, len(f.Alerts)),
	}
	for _, city := range f.Cities {
		c.cities = append(c.cities, strings.TrimSpace(city))
	}
	for _, e := range f.Alerts {
		c.alerts = append(c.alerts, entity.Alert{
			ID:          e.ID,
			City:        strings.TrimSpace(e.City),
			Title:       e.Title,
			Description: e.Description,
			Severity:    entity.ParseSeverity(e.Severity),
			Type:        entity.ParseAlertType(e.Type),
			Color:       e.Color,
			Timestamp:   e.Timestamp,
		})
	}
	return c, nil
}

func validate(f *catalogFile) error {
	if len(f.Cities) == 0 {
		return &entity.ValidationError{Field: "cities", Message: "at least one city is required"}
	}
	seen := make(map[string]struct{}, len(f.Alerts))
	for i, a := range f.Alerts {
		if a.ID == "" {
			return &entity.ValidationError{Field: fmt.Sprintf("alerts[%d].id", i), Message: "is required"}
		}
		if _, dup := seen[a.ID]; dup {
			return &entity.ValidationError{Field: fmt.Sprintf("alerts[%d].id", i), Message: "duplicate id " + a.ID}
		}
		seen[a.ID] = struct{}{}
		if a.Title == "" {
			return &entity.ValidationError{Field: fmt.Sprintf("alerts[%d].title", i), Message: "is required"}
		}
	}
	return nil
}

// Cities returns the selectable cities in catalog order.
func (c *Catalog) Cities() []string {
	out := make([]string, len(c.cities))
	copy(out, c.cities)
	return out
}

// List returns alerts in catalog order. A non-empty city keeps only alerts
// for that city plus the ones that apply everywhere.
func (c *Catalog) List(city string) []entity.Alert {
	city = strings.TrimSpace(city)
	out := make([]entity.Alert, 0, len(c.alerts))
	for _, a := range c.alerts {
		if city == "" || a.AppliesTo(city) {
			out = append(out, a)
		}
	}
	return out
}

// HasCity reports whether city is one of the selectable cities (case-insensitive).
func (c *Catalog) HasCity(city string) bool {
	for _, known := range c.cities {
		if strings.EqualFold(known, strings.TrimSpace(city)) {
			return true
		}
	}
	return false
}
