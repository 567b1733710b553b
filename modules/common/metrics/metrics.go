// Package metrics 운세 생성 / 내보내기 Prometheus 지표
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fortune"

var (
	// GenerationTotal - 생성 시도 결과 (status: success, generation_error, closed)
	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "total",
			Help:      "Total number of fortune generation attempts",
		},
		[]string{"mode", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Fortune generation duration in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"mode"},
	)

	// ImageFallbackTotal - 초상화 대체 이미지 사용 (reason: error, no_inline_data)
	ImageFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "fallback_total",
			Help:      "Total number of portraits resolved to the placeholder",
		},
		[]string{"reason"},
	)

	MoodTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mood",
			Name:      "total",
			Help:      "Classified mood categories",
		},
		[]string{"mood"},
	)

	// ExportTotal - 내보내기 최종 결과
	ExportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "total",
			Help:      "Export pipeline outcomes",
		},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "active_sessions",
			Help:      "Number of live wizard sessions",
		},
	)

	DiscardedResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "discarded_total",
			Help:      "Results discarded because their activation had ended",
		},
	)
)
