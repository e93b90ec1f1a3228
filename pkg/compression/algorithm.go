// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package compression provides the content encodings applied to generated
// thumbnails before they are stored. Every algorithm maps onto an HTTP
// Content-Encoding token so the object can be served as-is.
package compression

// Algorithm represents a compression algorithm
type Algorithm string

const (
	// None indicates no compression
	None Algorithm = "none"
	// Gzip uses gzip (RFC 1952), understood by every HTTP client
	Gzip Algorithm = "gzip"
	// ZSTD uses Zstandard (RFC 8878), Content-Encoding "zstd"
	ZSTD Algorithm = "zstd"
)

// IsValid returns true if the algorithm is recognized
func (a Algorithm) IsValid() bool {
	switch a {
	case None, Gzip, ZSTD:
		return true
	default:
		return false
	}
}

// String returns the string representation of the algorithm
func (a Algorithm) String() string {
	return string(a)
}

// ContentEncoding returns the HTTP Content-Encoding token for the algorithm.
// None and unknown algorithms have no encoding and return "".
func (a Algorithm) ContentEncoding() string {
	switch a {
	case Gzip, ZSTD:
		return string(a)
	default:
		return ""
	}
}

// ParseAlgorithm parses a string into an Algorithm.
// Returns None for unrecognized strings and Gzip for the empty string.
func ParseAlgorithm(s string) Algorithm {
	if s == "" {
		return Gzip
	}
	algo := Algorithm(s)
	if algo.IsValid() {
		return algo
	}
	return None
}
