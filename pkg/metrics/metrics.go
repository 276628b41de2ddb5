// Package metrics регистрирует Prometheus-метрики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registrations считает попытки регистрации биометрии по результату:
	// registered, duplicate, invalid, error.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moomingle",
		Name:      "muzzle_registrations_total",
		Help:      "Muzzle biometric registration attempts by outcome.",
	}, []string{"outcome"})

	// Verifications считает проверки биометрии по результату: match, no_match, invalid.
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moomingle",
		Name:      "muzzle_verifications_total",
		Help:      "Muzzle biometric verification attempts by outcome.",
	}, []string{"outcome"})

	// Classifications считает предсказания породы по источнику: model, fallback.
	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moomingle",
		Name:      "breed_classifications_total",
		Help:      "Breed classification results by source.",
	}, []string{"source"})

	// ScanDuration — длительность линейного скана реестра биометрий.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "moomingle",
		Name:      "muzzle_scan_duration_seconds",
		Help:      "Duration of full registry similarity scans.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	// RegistrySize — текущее число записей в реестре биометрий.
	RegistrySize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "moomingle",
		Name:      "muzzle_registry_records",
		Help:      "Number of records in the muzzle registry.",
	})
)
