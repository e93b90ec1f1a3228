// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"sync"
)

func init() {
	Register(TypeMemory, func(ctx context.Context, cfg Config) (Storage, error) {
		return NewMemory(cfg.Bucket), nil
	})
}

// MemoryObject is an object held by Memory.
type MemoryObject struct {
	Data []byte
	PutOptions
}

// Memory is an in-memory Storage used by tests and local serve mode.
// The Fail* hooks, when set, are returned instead of performing the call.
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]*MemoryObject

	FailGet  error
	FailTags error
	FailPut  error

	gets, tagReads, puts int
}

// NewMemory creates a new in-memory storage
func NewMemory(bucket string) *Memory {
	if bucket == "" {
		bucket = "memory"
	}
	return &Memory{
		bucket:  bucket,
		objects: make(map[string]*MemoryObject),
	}
}

func (m *Memory) Type() Type {
	return TypeMemory
}

func (m *Memory) Bucket() string {
	return m.bucket
}

// Seed stores an object directly, bypassing the PutObject counters.
// A nil tags argument stores the object without any tag set.
func (m *Memory) Seed(key string, data []byte, contentType string, tags Tags) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = &MemoryObject{
		Data:       bytes.Clone(data),
		PutOptions: PutOptions{ContentType: contentType, Tags: maps.Clone(tags)},
	}
}

// Object returns a stored object.
func (m *Memory) Object(key string) (*MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Calls returns how many GetObject, GetObjectTags and PutObject calls were made.
func (m *Memory) Calls() (gets, tagReads, puts int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets, m.tagReads, m.puts
}

func (m *Memory) GetObject(ctx context.Context, key string) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++

	if m.FailGet != nil {
		return nil, fmt.Errorf("get object: %w", m.FailGet)
	}

	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get object: %w: %s", ErrNotFound, key)
	}

	return &Object{
		Body:          io.NopCloser(bytes.NewReader(obj.Data)),
		ContentType:   obj.ContentType,
		ContentLength: int64(len(obj.Data)),
	}, nil
}

func (m *Memory) GetObjectTags(ctx context.Context, key string) (Tags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tagReads++

	if m.FailTags != nil {
		return nil, fmt.Errorf("get object tagging: %w", m.FailTags)
	}

	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get object tagging: %w: %s", ErrNotFound, key)
	}
	return maps.Clone(obj.Tags), nil
}

func (m *Memory) PutObject(ctx context.Context, key string, data []byte, opts PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++

	if m.FailPut != nil {
		return fmt.Errorf("put object: %w", m.FailPut)
	}

	opts.Tags = maps.Clone(opts.Tags)
	m.objects[key] = &MemoryObject{Data: bytes.Clone(data), PutOptions: opts}
	return nil
}
