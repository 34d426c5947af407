// Package preference persists the user's selected city.
package preference

import (
	"context"
	"errors"
	"log/slog"

	"citypulse/internal/observability/metrics"
	"citypulse/internal/repository"
)

const (
	// DefaultKey is the storage key holding the selected city.
	DefaultKey = "@city_pulse_selected_city"
	// DefaultCity is returned when no city has been saved.
	DefaultCity = "New York"
)

// Service reads and writes the selected city.
type Service struct {
	Store       repository.KVStore
	Key         string
	DefaultCity string
	Logger      *slog.Logger
}

// NewService creates a preference service. Empty key or defaultCity select the package defaults.
func NewService(store repository.KVStore, key, defaultCity string, logger *slog.Logger) *Service {
	return &Service{Store: store, Key: key, DefaultCity: defaultCity, Logger: logger}
}

func (s *Service) key() string {
	if s.Key == "" {
		return DefaultKey
	}
	return s.Key
}

func (s *Service) fallback() string {
	if s.DefaultCity == "" {
		return DefaultCity
	}
	return s.DefaultCity
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// SelectedCity returns the saved city, or the default when nothing usable is stored.
func (s *Service) SelectedCity(ctx context.Context) string {
	city, err := s.Store.Get(ctx, s.key())
	switch {
	case errors.Is(err, repository.ErrKeyNotFound):
		metrics.RecordPreferenceOperation("get", "default")
		return s.fallback()
	case err != nil:
		s.logger().Warn("selected city read failed", slog.Any("error", err))
		metrics.RecordPreferenceOperation("get", "read_failed")
		return s.fallback()
	case city == "":
		metrics.RecordPreferenceOperation("get", "default")
		return s.fallback()
	}
	metrics.RecordPreferenceOperation("get", "stored")
	return city
}

// SaveSelectedCity persists city verbatim. Write failures are logged, not returned.
func (s *Service) SaveSelectedCity(ctx context.Context, city string) {
	if err := s.Store.Set(ctx, s.key(), city); err != nil {
		s.logger().Warn("selected city write failed",
			slog.String("city", city),
			slog.Any("error", err))
		metrics.RecordPreferenceOperation("save", "failed")
		return
	}
	metrics.RecordPreferenceOperation("save", "saved")
}
