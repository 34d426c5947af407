package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"high":     SeverityHigh,
		"MEDIUM":   SeverityMedium,
		" low ":    SeverityLow,
		"critical": SeverityInfo,
		"":         SeverityInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseSeverity(in), "input %q", in)
	}
}

func TestParseAlertType(t *testing.T) {
	cases := map[string]AlertType{
		"weather":    AlertTypeWeather,
		"Traffic":    AlertTypeTraffic,
		"health":     AlertTypeHealth,
		"safety":     AlertTypeSafety,
		"utility":    AlertTypeUtility,
		"earthquake": AlertTypeGeneral,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseAlertType(in), "input %q", in)
	}
}

func TestAlert_AppliesTo(t *testing.T) {
	global := Alert{ID: "1"}
	local := Alert{ID: "2", City: "Seattle"}

	assert.True(t, global.AppliesTo("Austin"))
	assert.True(t, local.AppliesTo("seattle"))
	assert.False(t, local.AppliesTo("Austin"))
}
