package entity

import (
	"strings"
	"time"
)

// Severity ranks how urgent an emergency alert is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// ParseSeverity maps a raw severity string onto a known Severity.
// Unknown values are informational.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// AlertType categorizes an emergency alert.
type AlertType string

const (
	AlertTypeWeather AlertType = "weather"
	AlertTypeTraffic AlertType = "traffic"
	AlertTypeHealth  AlertType = "health"
	AlertTypeSafety  AlertType = "safety"
	AlertTypeUtility AlertType = "utility"
	AlertTypeGeneral AlertType = "general"
)

// ParseAlertType maps a raw type string onto a known AlertType.
// Unknown values are general announcements.
func ParseAlertType(s string) AlertType {
	switch AlertType(strings.ToLower(strings.TrimSpace(s))) {
	case AlertTypeWeather:
		return AlertTypeWeather
	case AlertTypeTraffic:
		return AlertTypeTraffic
	case AlertTypeHealth:
		return AlertTypeHealth
	case AlertTypeSafety:
		return AlertTypeSafety
	case AlertTypeUtility:
		return AlertTypeUtility
	default:
		return AlertTypeGeneral
	}
}

// Alert is a read-only emergency notice for a city.
// An empty City means the alert applies everywhere.
type Alert struct {
	ID          string    `json:"id"`
	City        string    `json:"city,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Type        AlertType `json:"type"`
	Color       string    `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
}

// AppliesTo reports whether the alert should be listed for city.
// Matching is case-insensitive.
func (a Alert) AppliesTo(city string) bool {
	return a.City == "" || strings.EqualFold(a.City, city)
}
