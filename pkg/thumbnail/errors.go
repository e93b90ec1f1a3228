// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package thumbnail

import (
	"fmt"
	"net/http"
)

// Kind classifies why a request ended before the redirect
type Kind int

const (
	KindNone Kind = iota
	KindConfiguration
	KindPathMissing
	KindParse
	KindFetch
	KindNotAnImage
	KindNotEligible
	KindAlreadyThumbnail
	KindTransform
	KindStore
)

var kindNames = map[Kind]string{
	KindNone:             "none",
	KindConfiguration:    "configuration",
	KindPathMissing:      "path_missing",
	KindParse:            "parse",
	KindFetch:            "fetch",
	KindNotAnImage:       "not_an_image",
	KindNotEligible:      "not_eligible",
	KindAlreadyThumbnail: "already_thumbnail",
	KindTransform:        "transform",
	KindStore:            "store",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// StatusCode maps a kind to the HTTP status returned to the caller
func (k Kind) StatusCode() int {
	switch k {
	case KindNone:
		return http.StatusMovedPermanently
	case KindPathMissing, KindParse, KindNotAnImage:
		return http.StatusBadRequest
	case KindNotEligible, KindAlreadyThumbnail:
		return http.StatusUnprocessableEntity
	case KindFetch, KindTransform, KindStore:
		return http.StatusFailedDependency
	default:
		return http.StatusInternalServerError
	}
}

// Error is a terminal pipeline failure. Message is the response body.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
