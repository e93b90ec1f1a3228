// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage is the object-store boundary of the thumbnail pipeline:
// fetch a source object and its tag set, and write a derivative.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// Type names a storage implementation.
type Type string

const (
	TypeS3     Type = "s3"
	TypeMemory Type = "memory"
)

var (
	ErrNotFound     = errors.New("object not found")
	ErrAccessDenied = errors.New("access denied")
)

// Tags is an object tag set. A nil Tags means no tag set was returned for the
// object, which is different from an empty, non-nil tag set.
type Tags map[string]string

// Has reports whether the tag key is set to value.
func (t Tags) Has(key, value string) bool {
	v, ok := t[key]
	return ok && v == value
}

// Encode renders the tag set in the URL query form used by the
// x-amz-tagging header, with keys sorted.
func (t Tags) Encode() string {
	if len(t) == 0 {
		return ""
	}
	v := url.Values{}
	for k, val := range t {
		v.Set(k, val)
	}
	return v.Encode()
}

// Object is a fetched source object. Body must be closed by the caller.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// PutOptions carries the metadata written alongside a derivative.
type PutOptions struct {
	CacheControl    string
	ContentType     string
	ContentEncoding string
	Tags            Tags
}

// Storage is implemented by every object store backend. All calls are bound
// to a single bucket chosen at construction time.
type Storage interface {
	Type() Type
	Bucket() string

	GetObject(ctx context.Context, key string) (*Object, error)
	GetObjectTags(ctx context.Context, key string) (Tags, error)
	PutObject(ctx context.Context, key string, data []byte, opts PutOptions) error
}

// Config selects and configures a Storage implementation.
type Config struct {
	Type   Type
	Bucket string

	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// Factory creates a Storage from config
type Factory func(ctx context.Context, cfg Config) (Storage, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Factory)
)

// Register adds a factory for a storage type
func Register(t Type, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = f
}

// New creates a Storage from config
func New(ctx context.Context, cfg Config) (Storage, error) {
	if cfg.Type == "" {
		cfg.Type = TypeS3
	}

	registryMu.RLock()
	f, ok := registry[cfg.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
	return f(ctx, cfg)
}
