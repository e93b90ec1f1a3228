// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package transform resizes and re-encodes source images into thumbnails.
package transform

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

const (
	DefaultJPEGQuality  = 80
	DefaultMaxDimension = 10000
)

var (
	ErrInvalidDimensions = errors.New("width and height must be positive")
	ErrTooLarge          = errors.New("requested dimensions exceed the maximum")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Options controls a single resize.
type Options struct {
	Width  int
	Height int

	// ContentType of the source. image/jpeg and image/png select the
	// encoder explicitly; any other type is re-encoded in the format the
	// decoder detected.
	ContentType string

	// JPEGQuality defaults to DefaultJPEGQuality.
	JPEGQuality int
	// MaxDimension caps Width and Height. Zero means DefaultMaxDimension,
	// a negative value disables the check.
	MaxDimension int
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, o.Width, o.Height)
	}
	limit := o.MaxDimension
	if limit == 0 {
		limit = DefaultMaxDimension
	}
	if limit > 0 && (o.Width > limit || o.Height > limit) {
		return fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, o.Width, o.Height, limit)
	}
	return nil
}

// Resize returns a reader producing the resized image encoded according to
// opts. Decoding and encoding run in a separate goroutine; errors surface on
// Read. The returned ReadCloser must be closed.
func Resize(r io.Reader, opts Options) io.ReadCloser {
	pr, pw := io.Pipe()
	rr := &resizeReader{pr: pr, done: make(chan struct{})}

	go func() {
		defer close(rr.done)
		pw.CloseWithError(resize(pw, r, opts))
	}()

	return rr
}

// Image decodes, resizes and encodes in one call.
func Image(w io.Writer, r io.Reader, opts Options) error {
	return resize(w, r, opts)
}

func resize(w io.Writer, r io.Reader, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	src, decoded, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	format, encOpts, err := outputFormat(opts, decoded)
	if err != nil {
		return err
	}

	thumb := imaging.Fill(src, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)

	if err := imaging.Encode(w, thumb, format, encOpts...); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

func outputFormat(opts Options, decoded string) (imaging.Format, []imaging.EncodeOption, error) {
	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}

	switch opts.ContentType {
	case "image/jpeg":
		return imaging.JPEG, []imaging.EncodeOption{imaging.JPEGQuality(quality)}, nil
	case "image/png":
		return imaging.PNG, nil, nil
	}

	format, err := imaging.FormatFromExtension(decoded)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, decoded)
	}
	if format == imaging.JPEG {
		return format, []imaging.EncodeOption{imaging.JPEGQuality(quality)}, nil
	}
	return format, nil, nil
}

type resizeReader struct {
	pr   *io.PipeReader
	done chan struct{}
}

func (r *resizeReader) Read(p []byte) (int, error) {
	return r.pr.Read(p)
}

func (r *resizeReader) Close() error {
	r.pr.Close()
	<-r.done
	return nil
}
