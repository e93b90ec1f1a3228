// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package api adapts inbound invocations (plain HTTP and API Gateway v2
// Lambda events) to the thumbnail pipeline.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/LeeDigitalWorks/zapthumb/pkg/thumbnail"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceHTTP   = "http"
	sourceLambda = "lambda"

	HeaderRequestID = "X-Request-Id"
)

// Pipeline is satisfied by *thumbnail.Pipeline.
type Pipeline interface {
	Handle(ctx context.Context, req thumbnail.Request) thumbnail.Response
}

var (
	metricsRequest = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapthumb",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Inbound requests by source and status code",
		},
		[]string{"source", "status"},
	)

	metricsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zapthumb",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Inbound request duration by source and status code",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source", "status"},
	)
)

func observe(source string, status int, start time.Time) {
	code := strconv.Itoa(status)
	metricsRequest.WithLabelValues(source, code).Inc()
	metricsRequestDuration.WithLabelValues(source, code).Observe(time.Since(start).Seconds())
}

// report sends dependency and configuration failures to Sentry. Client
// errors (4xx other than 424) are expected traffic and are not reported.
func report(ctx context.Context, requestID string, resp thumbnail.Response) bool {
	if resp.Err == nil {
		return false
	}
	if resp.StatusCode != http.StatusFailedDependency && resp.StatusCode < http.StatusInternalServerError {
		return false
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return false
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		var e *thumbnail.Error
		if errors.As(resp.Err, &e) {
			scope.SetTag("kind", e.Kind.String())
		}
		scope.SetTag("status", strconv.Itoa(resp.StatusCode))
		if requestID != "" {
			scope.SetTag("request_id", requestID)
		}
		hub.CaptureException(resp.Err)
	})
	return true
}
