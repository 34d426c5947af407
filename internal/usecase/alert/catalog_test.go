package alert

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citypulse/internal/domain/entity"
)

const sample = `
cities: [Boston, " Denver "]
alerts:
  - id: a
    city: Boston
    title: Snow emergency
    severity: HIGH
    type: weather
    color: "#e74c3c"
    timestamp: 2024-01-05T08:00:00Z
  - id: b
    title: System test
    severity: urgent
    type: drill
  - id: c
    city: Denver
    title: Water main break
    severity: low
    type: utility
`

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	cities := c.Cities()
	require.NotEmpty(t, cities)
	assert.Equal(t, "New York", cities[0])
	assert.True(t, c.HasCity("new york"))
	assert.NotEmpty(t, c.List(""))
}

func TestParse_Normalizes(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"Boston", "Denver"}, c.Cities())

	all := c.List("")
	require.Len(t, all, 3)
	assert.Equal(t, entity.SeverityHigh, all[0].Severity)
	assert.Equal(t, entity.AlertTypeWeather, all[0].Type)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), all[0].Timestamp)
	assert.Equal(t, entity.SeverityInfo, all[1].Severity)
	assert.Equal(t, entity.AlertTypeGeneral, all[1].Type)
}

func TestList_FiltersByCity(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	tests := []struct {
		city string
		want []string
	}{
		{city: "", want: []string{"a", "b", "c"}},
		{city: "Boston", want: []string{"a", "b"}},
		{city: "denver", want: []string{"b", "c"}},
		{city: "Tulsa", want: []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			var ids []string
			for _, a := range c.List(tt.city) {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCities_ReturnsCopy(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	got := c.Cities()
	got[0] = "Mutated"
	assert.Equal(t, "Boston", c.Cities()[0])
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed", yaml: "cities: [unterminated"},
		{name: "no cities", yaml: "alerts: []"},
		{name: "missing id", yaml: "cities: [A]\nalerts:\n  - title: x"},
		{name: "missing title", yaml: "cities: [A]\nalerts:\n  - id: x"},
		{name: "duplicate id", yaml: "cities: [A]\nalerts:\n  - {id: x, title: t}\n  - {id: x, title: u}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_ValidationErrorIsTyped(t *testing.T) {
	_, err := Parse([]byte("alerts: []"))
	assert.ErrorIs(t, err, entity.ErrValidationFailed)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.List(""), 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
