// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func init() {
	zstdEncoderPool = sync.Pool{
		New: func() any {
			enc, _ := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(zstd.SpeedDefault),
				zstd.WithEncoderConcurrency(1),
			)
			return enc
		},
	}
	zstdDecoderPool = sync.Pool{
		New: func() any {
			dec, _ := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
			)
			return dec
		},
	}
}

func compressZSTD(data []byte) ([]byte, error) {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func decompressZSTD(data []byte) ([]byte, error) {
	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	decompressed, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return decompressed, nil
}

func newZSTDCompressReader(r io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	enc.Reset(pw)

	return newPipeCompressReader(r, enc, pw, pr, func() {
		zstdEncoderPool.Put(enc)
	})
}

func newZSTDDecompressReader(r io.Reader) (io.ReadCloser, error) {
	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	if err := dec.Reset(r); err != nil {
		zstdDecoderPool.Put(dec)
		return nil, fmt.Errorf("zstd reset: %w", err)
	}
	return &pooledZSTDReader{Decoder: dec}, nil
}

type pooledZSTDReader struct {
	*zstd.Decoder
}

func (r *pooledZSTDReader) Read(p []byte) (int, error) {
	return r.Decoder.Read(p)
}

func (r *pooledZSTDReader) Close() error {
	zstdDecoderPool.Put(r.Decoder)
	return nil
}
