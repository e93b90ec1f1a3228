// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"io"
	"net/http"
	"time"

	reqctx "github.com/LeeDigitalWorks/zapthumb/pkg/context"
	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"
	"github.com/LeeDigitalWorks/zapthumb/pkg/thumbnail"
)

// Server answers thumbnail requests over plain HTTP. It is the target of an
// S3 website 404 redirect rule when the service runs outside Lambda.
type Server struct {
	pipeline Pipeline
	stage    string
}

// NewServer creates a Server. stage is stripped from request paths the same
// way the API gateway stage is.
func NewServer(p Pipeline, stage string) *Server {
	return &Server{pipeline: p, stage: stage}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.URL.Path == "/" || r.URL.Path == "/health-check" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "OK")
		return
	}

	ctx, requestID := reqctx.WithRequestID(r.Context(), r.Header.Get(HeaderRequestID))
	ctx = logger.WithFields(ctx, "request_id", requestID, "path", r.URL.Path)

	resp := s.pipeline.Handle(ctx, thumbnail.Request{
		Path:      r.URL.Path,
		Stage:     s.stage,
		RequestID: requestID,
	})
	report(ctx, requestID, resp)

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set(HeaderRequestID, requestID)
	if resp.Body != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" && r.Method != http.MethodHead {
		if _, err := io.WriteString(w, resp.Body); err != nil {
			logger.Ctx(ctx).Debug().Err(err).Msg("failed to write response body")
		}
	}

	observe(sourceHTTP, resp.StatusCode, start)
}
