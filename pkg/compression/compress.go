// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"io"
)

// Compress compresses data using the specified algorithm.
// Returns the original data unchanged if algo is None or empty.
func Compress(algo Algorithm, data []byte) ([]byte, error) {
	switch algo {
	case Gzip:
		return compressGzip(data)
	case ZSTD:
		return compressZSTD(data)
	default:
		return data, nil
	}
}

// Decompress decompresses data using the specified algorithm.
// Returns the original data unchanged if algo is None or empty.
func Decompress(algo Algorithm, data []byte) ([]byte, error) {
	switch algo {
	case Gzip:
		return decompressGzip(data)
	case ZSTD:
		return decompressZSTD(data)
	default:
		return data, nil
	}
}

// CompressReader wraps a reader to compress data as it's read.
// The returned ReadCloser must be closed when done.
func CompressReader(algo Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch algo {
	case Gzip:
		return newGzipCompressReader(r), nil
	case ZSTD:
		return newZSTDCompressReader(r), nil
	default:
		return io.NopCloser(r), nil
	}
}

// DecompressReader wraps a reader to decompress data as it's read.
// The returned ReadCloser must be closed when done.
func DecompressReader(algo Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch algo {
	case Gzip:
		return newGzipDecompressReader(r)
	case ZSTD:
		return newZSTDDecompressReader(r)
	default:
		return io.NopCloser(r), nil
	}
}

// CompressionRatio calculates the compression ratio (original / compressed).
// Returns 1.0 if compressed size is zero or larger than original.
func CompressionRatio(originalSize, compressedSize int) float64 {
	if compressedSize <= 0 || compressedSize >= originalSize {
		return 1.0
	}
	return float64(originalSize) / float64(compressedSize)
}

// CountingReader counts the bytes read through it. It lets callers record
// the uncompressed size of a stream that is compressed on the fly.
type CountingReader struct {
	R io.Reader
	N int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}

// pipeCompressReader runs a compressing writer in a goroutine feeding the
// read side of a pipe.
type pipeCompressReader struct {
	pr      *io.PipeReader
	done    chan struct{}
	release func()
}

func newPipeCompressReader(r io.Reader, w io.WriteCloser, pw *io.PipeWriter, pr *io.PipeReader, release func()) *pipeCompressReader {
	cr := &pipeCompressReader{
		pr:      pr,
		done:    make(chan struct{}),
		release: release,
	}

	go func() {
		defer close(cr.done)
		_, err := io.Copy(w, r)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			pw.CloseWithError(err)
		} else {
			pw.Close()
		}
	}()

	return cr
}

func (r *pipeCompressReader) Read(p []byte) (int, error) {
	return r.pr.Read(p)
}

func (r *pipeCompressReader) Close() error {
	r.pr.Close()
	<-r.done
	if r.release != nil {
		r.release()
	}
	return nil
}
