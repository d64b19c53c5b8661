// Package metrics exposes the pipeline's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics
var (
	ImagesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photos3_images_ingested_total",
			Help: "Total number of images ingested successfully",
		},
	)

	EventFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photos3_event_failures_total",
			Help: "Total number of upload events that failed processing",
		},
		[]string{"reason"}, // "decode", "store", "other"
	)

	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photos3_messages_processed_total",
			Help: "Total number of queue messages processed",
		},
		[]string{"outcome"}, // "deleted", "retained"
	)
)

// Thumbnail metrics
var (
	ThumbnailsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photos3_thumbnails_generated_total",
			Help: "Total number of thumbnails generated",
		},
	)

	ThumbnailFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photos3_thumbnail_failures_total",
			Help: "Total number of thumbnail jobs that failed",
		},
	)
)
