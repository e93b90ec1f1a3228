// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package context carries the request id of an invocation.
package context

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID returns ctx carrying id. Precedence: a non-empty id argument,
// then an id already stored in ctx, then a new random UUID.
func WithRequestID(c context.Context, id string) (context.Context, string) {
	if id == "" {
		if existing := RequestID(c); existing != "" {
			return c, existing
		}
		id = uuid.NewString()
	}
	return context.WithValue(c, requestIDKey{}, id), id
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(c context.Context) string {
	id, _ := c.Value(requestIDKey{}).(string)
	return id
}
