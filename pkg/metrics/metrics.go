// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "photosaver"

var (
	// Transitions counts committed slideshow transitions.
	Transitions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Committed photo transitions.",
	})

	// PhotosMarkedBad counts photos excluded after failing to load.
	PhotosMarkedBad = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_marked_bad_total",
		Help:      "Photos excluded from the pool after a load error.",
	})

	// UsablePhotos tracks the usable size of the active pool.
	UsablePhotos = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "usable_photos",
		Help:      "Photos in the active pool that are not marked bad.",
	})

	// FetchAttempts counts HTTP attempts by outcome (ok, retry, auth_retry, error).
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_attempts_total",
		Help:      "Remote fetch attempts by outcome.",
	}, []string{"outcome"})

	// SourcePhotos counts photos returned per source type.
	SourcePhotos = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_photos_total",
		Help:      "Photos returned by each photo source.",
	}, []string{"source"})

	// GeoLookups counts reverse geocoding lookups by result (hit, miss, error).
	GeoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geo_lookups_total",
		Help:      "Location lookups by cache result.",
	}, []string{"result"})
)
