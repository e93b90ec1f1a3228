// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Resolve
// ============================================================================

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		stage string
		want  Keys
	}{
		{
			name:  "stage prefix stripped",
			path:  "/v1/public/80x80/img.png",
			stage: "v1",
			want: Keys{
				Path:       "public/",
				Dimensions: "80x80",
				FileName:   "img.png",
				SourceKey:  "public/img.png",
				TargetKey:  "public/80x80/img.png",
				Width:      80,
				Height:     80,
			},
		},
		{
			name:  "stage absent from path",
			path:  "/public/80x80/img.png",
			stage: "v1",
			want: Keys{
				Path:       "public/",
				Dimensions: "80x80",
				FileName:   "img.png",
				SourceKey:  "public/img.png",
				TargetKey:  "public/80x80/img.png",
				Width:      80,
				Height:     80,
			},
		},
		{
			name:  "local prefix from bucket redirect",
			path:  "/prod/local/public/120x40/331C474F-61FC-4E2B-9242-4AA7C29B389D.png",
			stage: "prod",
			want: Keys{
				Path:       "local/public/",
				Dimensions: "120x40",
				FileName:   "331C474F-61FC-4E2B-9242-4AA7C29B389D.png",
				SourceKey:  "local/public/331C474F-61FC-4E2B-9242-4AA7C29B389D.png",
				TargetKey:  "local/public/120x40/331C474F-61FC-4E2B-9242-4AA7C29B389D.png",
				Width:      120,
				Height:     40,
			},
		},
		{
			name:  "root level object",
			path:  "/10x20/a.jpg",
			stage: "",
			want: Keys{
				Path:       "",
				Dimensions: "10x20",
				FileName:   "a.jpg",
				SourceKey:  "a.jpg",
				TargetKey:  "10x20/a.jpg",
				Width:      10,
				Height:     20,
			},
		},
		{
			name:  "only the segment before the file name is a dimension",
			path:  "/a/1x1/b/80x80/img.png",
			stage: "",
			want: Keys{
				Path:       "a/1x1/b/",
				Dimensions: "80x80",
				FileName:   "img.png",
				SourceKey:  "a/1x1/b/img.png",
				TargetKey:  "a/1x1/b/80x80/img.png",
				Width:      80,
				Height:     80,
			},
		},
		{
			name:  "non-greedy prefix keeps all leading digits",
			path:  "/a/180x80/img.png",
			stage: "",
			want: Keys{
				Path:       "a/",
				Dimensions: "180x80",
				FileName:   "img.png",
				SourceKey:  "a/img.png",
				TargetKey:  "a/180x80/img.png",
				Width:      180,
				Height:     80,
			},
		},
		{
			name:  "zero dimensions accepted",
			path:  "/public/0x0/img.png",
			stage: "",
			want: Keys{
				Path:       "public/",
				Dimensions: "0x0",
				FileName:   "img.png",
				SourceKey:  "public/img.png",
				TargetKey:  "public/0x0/img.png",
			},
		},
		{
			name:  "query-like file name characters",
			path:  "/public/5x7/img.png?v=1&s=[a]~",
			stage: "",
			want: Keys{
				Path:       "public/",
				Dimensions: "5x7",
				FileName:   "img.png?v=1&s=[a]~",
				SourceKey:  "public/img.png?v=1&s=[a]~",
				TargetKey:  "public/5x7/img.png?v=1&s=[a]~",
				Width:      5,
				Height:     7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.path, tt.stage)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve(%q, %q) mismatch (-want +got):\n%s", tt.path, tt.stage, diff)
			}
		})
	}
}

func TestResolve_WrongPath(t *testing.T) {
	t.Parallel()

	paths := []string{
		"",
		"/",
		"/public/img.png",
		"/public/abcx80/img.png",
		"/public/80x80/",
		"/public/80x80/dir/img.png",
		"/public/80x80/img png",
		"public/80x80/img.png",
		"/public/80x/img.png",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			t.Parallel()

			_, err := Resolve(p, "v1")
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, msgWrongPath, perr.Message)
		})
	}
}

func TestResolve_StageRemovedOnlyAtStart(t *testing.T) {
	t.Parallel()

	got, err := Resolve("/public/v1/80x80/img.png", "v1")
	require.NoError(t, err)
	assert.Equal(t, "public/v1/img.png", got.SourceKey)
	assert.Equal(t, "public/v1/80x80/img.png", got.TargetKey)
}

func TestResolve_StageRemovedOnce(t *testing.T) {
	t.Parallel()

	got, err := Resolve("/v1/v1/80x80/img.png", "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1/img.png", got.SourceKey)
}

func TestResolve_ErrorMessageCarriesPaths(t *testing.T) {
	t.Parallel()

	_, err := Resolve("/v1/public/img.png", "v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong url path format: /v1/public/img.png")
	assert.Contains(t, err.Error(), "path without stage: /public/img.png")
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	a, err := Resolve("/v1/public/80x80/img.png", "v1")
	require.NoError(t, err)
	b, err := Resolve("/v1/public/80x80/img.png", "v1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolve_KeyDerivationProperty(t *testing.T) {
	t.Parallel()

	prefixes := []string{"/public", "/a/b/c", "/uploads/2024-01"}
	names := []string{"img.png", "x_y-z.jpeg", "file.tar.gz"}

	targets := make(map[string]string)
	for _, prefix := range prefixes {
		for _, name := range names {
			for w := 1; w <= 100; w += 33 {
				for h := 1; h <= 100; h += 49 {
					dims := fmt.Sprintf("%dx%d", w, h)
					p := prefix + "/" + dims + "/" + name

					got, err := Resolve(p, "stage")
					require.NoError(t, err, p)

					normalized := prefix[1:] + "/"
					assert.Equal(t, normalized+name, got.SourceKey)
					assert.Equal(t, normalized+dims+"/"+name, got.TargetKey)
					assert.Equal(t, w, got.Width)
					assert.Equal(t, h, got.Height)

					prev, dup := targets[got.TargetKey]
					assert.False(t, dup, "target key %q produced by %q and %q", got.TargetKey, prev, p)
					targets[got.TargetKey] = p
				}
			}
		}
	}
}

// ============================================================================
// ParseDimensions
// ============================================================================

func TestParseDimensions(t *testing.T) {
	t.Parallel()

	w, h, err := ParseDimensions("640x480")
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	w, h, err = ParseDimensions("007x0")
	require.NoError(t, err)
	assert.Equal(t, 7, w)
	assert.Equal(t, 0, h)
}

func TestParseDimensions_Invalid(t *testing.T) {
	t.Parallel()

	tokens := []string{
		"",
		"x",
		"80",
		"80x",
		"x80",
		"abcx80",
		"80X80",
		"-1x5",
		"8.0x5",
		" 80x80",
		"80x80/",
		"1x2x3",
		"99999999999999999999x1",
	}

	for _, tok := range tokens {
		t.Run(tok, func(t *testing.T) {
			t.Parallel()

			_, _, err := ParseDimensions(tok)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, msgWrongDimensions, perr.Message)
			assert.Equal(t, "wrong dimensions format", err.Error())
		})
	}
}

func TestStripStage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/public/x", StripStage("/v1/public/x", "v1"))
	assert.Equal(t, "/public/x", StripStage("/public/x", "v1"))
	assert.Equal(t, "/public/x", StripStage("/public/x", ""))
	assert.Equal(t, "2/public/x", StripStage("/v12/public/x", "v1"))
}
