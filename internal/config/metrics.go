package config

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loadTimestamp is the Unix time of the last successful Load.
	loadTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "config_load_timestamp_seconds",
			Help: "Unix timestamp of the last configuration load",
		},
	)

	// fallbacksTotal counts environment values that were ignored in favour of a default.
	fallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_fallbacks_total",
			Help: "Total number of invalid configuration values replaced by defaults",
		},
		[]string{"key"},
	)
)

func recordLoad() {
	loadTimestamp.Set(float64(time.Now().Unix()))
}
