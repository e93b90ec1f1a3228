// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package thumbnail

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts finished requests by outcome
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapthumb",
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Thumbnail requests by outcome kind and status code",
		},
		[]string{"kind", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zapthumb",
			Subsystem: "pipeline",
			Name:      "request_duration_seconds",
			Help:      "Time from request to terminal response",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// ThumbnailBytes tracks the stored (compressed) thumbnail size
	ThumbnailBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "zapthumb",
			Subsystem: "pipeline",
			Name:      "thumbnail_bytes",
			Help:      "Size of stored thumbnails after compression",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)
)

// RecordRequest records the outcome of one request
func RecordRequest(kind Kind, status int, took time.Duration) {
	RequestsTotal.WithLabelValues(kind.String(), strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(kind.String()).Observe(took.Seconds())
}
