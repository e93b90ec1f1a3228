// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmIsValid(t *testing.T) {
	tests := []struct {
		algo  Algorithm
		valid bool
	}{
		{None, true},
		{Gzip, true},
		{ZSTD, true},
		{"", false},
		{"invalid", false},
		{"lz4", false},
		{"br", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.algo), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.algo.IsValid())
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input    string
		expected Algorithm
	}{
		{"none", None},
		{"gzip", Gzip},
		{"zstd", ZSTD},
		{"", Gzip},
		{"invalid", None},
		{"GZIP", None}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAlgorithm(tt.input))
		})
	}
}

func TestContentEncoding(t *testing.T) {
	assert.Equal(t, "gzip", Gzip.ContentEncoding())
	assert.Equal(t, "zstd", ZSTD.ContentEncoding())
	assert.Equal(t, "", None.ContentEncoding())
	assert.Equal(t, "", Algorithm("lz4").ContentEncoding())
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	compressibleData := []byte(strings.Repeat("hello world this is compressible data ", 100))

	algorithms := []Algorithm{None, Gzip, ZSTD}

	for _, algo := range algorithms {
		t.Run(algo.String(), func(t *testing.T) {
			compressed, err := Compress(algo, compressibleData)
			require.NoError(t, err)

			decompressed, err := Decompress(algo, compressed)
			require.NoError(t, err)

			assert.Equal(t, compressibleData, decompressed)

			if algo != None {
				assert.Less(t, len(compressed), len(compressibleData),
					"compressed data should be smaller for compressible input")
			}
		})
	}
}

func TestCompressEmptyData(t *testing.T) {
	algorithms := []Algorithm{None, Gzip, ZSTD}

	for _, algo := range algorithms {
		t.Run(algo.String(), func(t *testing.T) {
			compressed, err := Compress(algo, []byte{})
			require.NoError(t, err)

			decompressed, err := Decompress(algo, compressed)
			require.NoError(t, err)

			// Handle nil vs empty slice - both represent empty data
			assert.Empty(t, decompressed)
		})
	}
}

func TestCompressRandomData(t *testing.T) {
	randomData := make([]byte, 4096)
	_, err := rand.Read(randomData)
	require.NoError(t, err)

	for _, algo := range []Algorithm{Gzip, ZSTD} {
		t.Run(algo.String(), func(t *testing.T) {
			compressed, err := Compress(algo, randomData)
			require.NoError(t, err)

			decompressed, err := Decompress(algo, compressed)
			require.NoError(t, err)
			assert.Equal(t, randomData, decompressed)
		})
	}
}

func TestCompressionRatio(t *testing.T) {
	tests := []struct {
		original, compressed int
		expected             float64
	}{
		{100, 50, 2.0},
		{100, 100, 1.0},
		{100, 200, 1.0},
		{100, 0, 1.0},
		{300, 100, 3.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CompressionRatio(tt.original, tt.compressed))
	}
}

func TestDecompressInvalidData(t *testing.T) {
	invalidData := []byte("this is not compressed data")

	for _, algo := range []Algorithm{Gzip, ZSTD} {
		t.Run(algo.String(), func(t *testing.T) {
			_, err := Decompress(algo, invalidData)
			assert.Error(t, err, "decompressing invalid data should fail")
		})
	}
}

// ============================================================================
// Streaming API Tests
// ============================================================================

func TestStreamingCompressReader(t *testing.T) {
	data := []byte(strings.Repeat("test data for compress reader ", 500))

	for _, algo := range []Algorithm{None, Gzip, ZSTD} {
		t.Run(algo.String(), func(t *testing.T) {
			reader, err := CompressReader(algo, bytes.NewReader(data))
			require.NoError(t, err)

			compressed, err := io.ReadAll(reader)
			require.NoError(t, err)
			require.NoError(t, reader.Close())

			decompressReader, err := DecompressReader(algo, bytes.NewReader(compressed))
			require.NoError(t, err)

			decompressed, err := io.ReadAll(decompressReader)
			require.NoError(t, err)
			decompressReader.Close()

			assert.Equal(t, data, decompressed)
		})
	}
}

func TestStreamingCompressReader_BlockDecompress(t *testing.T) {
	data := bytes.Repeat([]byte("streaming large data test "), 200000)

	for _, algo := range []Algorithm{Gzip, ZSTD} {
		t.Run(algo.String(), func(t *testing.T) {
			reader, err := CompressReader(algo, bytes.NewReader(data))
			require.NoError(t, err)
			defer reader.Close()

			compressed, err := io.ReadAll(reader)
			require.NoError(t, err)

			decompressed, err := Decompress(algo, compressed)
			require.NoError(t, err)
			assert.Equal(t, data, decompressed)

			ratio := float64(len(data)) / float64(len(compressed))
			t.Logf("%s: %d -> %d bytes (%.2fx)", algo, len(data), len(compressed), ratio)
		})
	}
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestStreamingCompressReader_SourceError(t *testing.T) {
	boom := errors.New("source exploded")

	for _, algo := range []Algorithm{Gzip, ZSTD} {
		t.Run(algo.String(), func(t *testing.T) {
			reader, err := CompressReader(algo, failingReader{err: boom})
			require.NoError(t, err)
			defer reader.Close()

			_, err = io.ReadAll(reader)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestStreamingCompressReader_EarlyClose(t *testing.T) {
	data := bytes.Repeat([]byte("abandon me "), 100000)

	reader, err := CompressReader(Gzip, bytes.NewReader(data))
	require.NoError(t, err)

	buf := make([]byte, 16)
	_, err = reader.Read(buf)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		reader.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after abandoning the stream")
	}
}

func TestCountingReader(t *testing.T) {
	cr := &CountingReader{R: strings.NewReader("twelve bytes")}
	out, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, "twelve bytes", string(out))
	assert.Equal(t, int64(12), cr.N)
}

func TestRecordCompression(t *testing.T) {
	// Must not panic for any algorithm label
	RecordCompression(Gzip, 1000, 400, 10*time.Millisecond)
	RecordCompression(None, 10, 10, 0)
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkCompressGzip(b *testing.B) {
	data := bytes.Repeat([]byte("benchmark data for compression "), 1024)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for b.Loop() {
		_, _ = Compress(Gzip, data)
	}
}

func BenchmarkCompressZSTD(b *testing.B) {
	data := bytes.Repeat([]byte("benchmark data for compression "), 1024)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for b.Loop() {
		_, _ = Compress(ZSTD, data)
	}
}
