// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CompressionRatioHist tracks compression ratios (original_size / compressed_size)
	CompressionRatioHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zapthumb",
			Subsystem: "compression",
			Name:      "ratio",
			Help:      "Compression ratio (original_size / compressed_size)",
			Buckets:   []float64{1.0, 1.05, 1.1, 1.25, 1.5, 2.0, 3.0, 5.0},
		},
		[]string{"algorithm"},
	)

	// CompressionDuration tracks time spent compressing a thumbnail stream
	CompressionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zapthumb",
			Subsystem: "compression",
			Name:      "duration_seconds",
			Help:      "Time spent encoding and compressing thumbnails",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	// CompressionBytesIn tracks original bytes before compression
	CompressionBytesIn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapthumb",
			Subsystem: "compression",
			Name:      "bytes_in_total",
			Help:      "Total bytes before compression (original size)",
		},
		[]string{"algorithm"},
	)

	// CompressionBytesOut tracks compressed bytes after compression
	CompressionBytesOut = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapthumb",
			Subsystem: "compression",
			Name:      "bytes_out_total",
			Help:      "Total bytes after compression (compressed size)",
		},
		[]string{"algorithm"},
	)
)

// RecordCompression records metrics for a compression operation
func RecordCompression(algo Algorithm, originalSize, compressedSize int, took time.Duration) {
	algoStr := algo.String()

	CompressionBytesIn.WithLabelValues(algoStr).Add(float64(originalSize))
	CompressionBytesOut.WithLabelValues(algoStr).Add(float64(compressedSize))
	CompressionDuration.WithLabelValues(algoStr).Observe(took.Seconds())

	ratio := CompressionRatio(originalSize, compressedSize)
	CompressionRatioHist.WithLabelValues(algoStr).Observe(ratio)
}
