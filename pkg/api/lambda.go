// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	reqctx "github.com/LeeDigitalWorks/zapthumb/pkg/context"
	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"
	"github.com/LeeDigitalWorks/zapthumb/pkg/thumbnail"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/getsentry/sentry-go"
)

// LambdaHandler is the function passed to lambda.Start.
type LambdaHandler func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// NewLambdaHandler adapts p to API Gateway v2 HTTP events. The path and
// stage come from the request context, not from RawPath. Every pipeline
// outcome is returned as a response; the handler error is always nil so the
// gateway never substitutes its own 502.
func NewLambdaHandler(p Pipeline) LambdaHandler {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		start := time.Now()

		requestID := event.RequestContext.RequestID
		if lc, ok := lambdacontext.FromContext(ctx); ok && requestID == "" {
			requestID = lc.AwsRequestID
		}
		ctx, requestID = reqctx.WithRequestID(ctx, requestID)
		path := event.RequestContext.HTTP.Path
		ctx = logger.WithFields(ctx, "request_id", requestID, "path", path, "stage", event.RequestContext.Stage)

		resp := p.Handle(ctx, thumbnail.Request{
			Path:      path,
			Stage:     event.RequestContext.Stage,
			RequestID: requestID,
		})
		if report(ctx, requestID, resp) {
			// The runtime may freeze the process as soon as the handler returns
			sentry.Flush(2 * time.Second)
		}

		observe(sourceLambda, resp.StatusCode, start)

		return events.APIGatewayV2HTTPResponse{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
		}, nil
	}
}
