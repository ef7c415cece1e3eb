// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics provides Prometheus metrics for configuration resolution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared with callers.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	FileKindRoot    = "root"
	FileKindDefault = "default"

	SectionLoaded  = "loaded"
	SectionSkipped = "skipped"
)

var (
	resolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfgtree_resolve_total",
		Help: "Configuration resolutions by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	resolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cfgtree_resolve_duration_seconds",
		Help:    "Wall time of a full configuration resolution",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	fileReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfgtree_file_reads_total",
		Help: "YAML documents read from disk by kind and outcome",
	}, []string{"kind", "outcome"}) // kind=root|default

	defaultSectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfgtree_default_sections_total",
		Help: "Default section entries processed by result",
	}, []string{"result"}) // result=loaded|skipped
)

// ObserveResolve records one finished resolution.
func ObserveResolve(d time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	resolveTotal.WithLabelValues(outcome).Inc()
	resolveDuration.Observe(d.Seconds())
}

// IncFileRead counts one document read attempt.
func IncFileRead(kind string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	fileReadsTotal.WithLabelValues(kind, outcome).Inc()
}

func IncDefaultSection(result string) { defaultSectionsTotal.WithLabelValues(result).Inc() }

// ResolveTotal exposes the resolution counter for tests in other packages.
func ResolveTotal(outcome string) prometheus.Counter {
	return resolveTotal.WithLabelValues(outcome)
}

// FileReadsTotal exposes the file read counter for tests in other packages.
func FileReadsTotal(kind, outcome string) prometheus.Counter {
	return fileReadsTotal.WithLabelValues(kind, outcome)
}

// DefaultSectionsTotal exposes the default section counter for tests in other packages.
func DefaultSectionsTotal(result string) prometheus.Counter {
	return defaultSectionsTotal.WithLabelValues(result)
}
