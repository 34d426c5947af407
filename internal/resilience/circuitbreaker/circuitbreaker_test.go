package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())

	if cb.Name() != "test-circuit" {
		t.Errorf("expected name='test-circuit', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_Execute(t *testing.T) {
	cb := New(testConfig())

	result, err := cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil || result != "ok" {
		t.Fatalf("Execute = (%v, %v), want (ok, nil)", result, err)
	}

	testErr := errors.New("boom")
	result, err = cb.Execute(func() (interface{}, error) {
		return nil, testErr
	})
	if !errors.Is(err, testErr) || result != nil {
		t.Fatalf("Execute = (%v, %v), want (nil, %v)", result, err, testErr)
	}
}

func TestCircuitBreaker_TripsOpenAndRecovers(t *testing.T) {
	cb := New(testConfig())
	testErr := errors.New("upstream down")

	// 5 failures reach MinRequests at 100% failure ratio.
	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, testErr })
	}
	if !cb.IsOpen() {
		t.Fatalf("expected open circuit, got %v", cb.State())
	}

	_, err := cb.Execute(func() (interface{}, error) {
		t.Error("function should not be called when circuit is open")
		return nil, nil
	})
	if !errors.Is(err, ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (interface{}, error) { return "ok", nil }); err != nil {
			t.Fatalf("half-open request %d failed: %v", i, err)
		}
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected Closed after successful half-open requests, got %v", cb.State())
	}
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cb := New(testConfig())
	testErr := errors.New("boom")

	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, testErr })
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("circuit must stay closed below MinRequests, got %v", cb.State())
	}
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	benign := errors.New("benign")
	cfg := testConfig()
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, benign) }
	cb := New(cfg)

	for i := 0; i < 10; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, benign })
		if !errors.Is(err, benign) {
			t.Fatalf("expected benign error to pass through, got %v", err)
		}
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("benign errors must not trip the circuit, got %v", cb.State())
	}
}

func TestPresetConfigs(t *testing.T) {
	tests := []struct {
		cfg      Config
		wantName string
	}{
		{DefaultConfig("x"), "x"},
		{NewsAPIConfig(), "newsapi"},
		{ReaderConfig(), "article-reader"},
		{StoreConfig(), "kv-store"},
	}
	for _, tt := range tests {
		if tt.cfg.Name != tt.wantName {
			t.Errorf("Name = %q, want %q", tt.cfg.Name, tt.wantName)
		}
		if tt.cfg.MaxRequests == 0 || tt.cfg.MinRequests == 0 {
			t.Errorf("%s: request limits must be positive", tt.cfg.Name)
		}
		if tt.cfg.FailureThreshold <= 0 || tt.cfg.FailureThreshold > 1 {
			t.Errorf("%s: FailureThreshold out of range: %v", tt.cfg.Name, tt.cfg.FailureThreshold)
		}
		if tt.cfg.Timeout <= 0 {
			t.Errorf("%s: Timeout must be positive", tt.cfg.Name)
		}
	}
}
