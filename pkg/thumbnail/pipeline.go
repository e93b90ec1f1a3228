// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package thumbnail turns a request for a "<width>x<height>" variant of a
// stored image into a stored, compressed thumbnail and a redirect to it.
//
// A request moves through these states, stopping at the first failure:
//
//	configured -> path present -> resolved -> fetched -> eligible
//	           -> transformed -> stored -> redirected
//
// Nothing is written to storage unless every earlier state was reached.
package thumbnail

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/zapthumb/pkg/compression"
	"github.com/LeeDigitalWorks/zapthumb/pkg/config"
	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"
	"github.com/LeeDigitalWorks/zapthumb/pkg/resolver"
	"github.com/LeeDigitalWorks/zapthumb/pkg/storage"
	"github.com/LeeDigitalWorks/zapthumb/pkg/transform"

	"github.com/dustin/go-humanize"
)

const (
	TagAutoThumbnail = "auto_thumbnail"
	TagThumbnail     = "thumbnail"
	tagTrue          = "true"

	HeaderLocation = "location"
)

// Request is a single thumbnail request as seen by the inbound adapters.
type Request struct {
	Path  string
	Stage string
	// RequestID is only used for logging.
	RequestID string
}

// Response is the terminal outcome of a request. Err is set for every
// non-redirect outcome and is never sent to the caller.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
	Err        error
}

// Transformer produces the resized image stream for a source body.
type Transformer func(r io.Reader, opts transform.Options) io.ReadCloser

type Option func(*Pipeline)

// WithTransformer replaces transform.Resize.
func WithTransformer(t Transformer) Option {
	return func(p *Pipeline) {
		p.transformer = t
	}
}

// Pipeline serves thumbnail requests against one bucket.
type Pipeline struct {
	cfg         config.Config
	cfgErr      error
	store       storage.Storage
	transformer Transformer
}

// New creates a Pipeline. An invalid cfg does not fail construction; every
// request is answered with the configuration error instead, so store may be
// nil in that case.
func New(cfg config.Config, store storage.Storage, opts ...Option) *Pipeline {
	if cfg.CacheControl == "" {
		cfg.CacheControl = config.DefaultCacheControl
	}
	if cfg.Compression == "" {
		cfg.Compression = compression.Gzip
	}

	p := &Pipeline{
		cfg:         cfg,
		cfgErr:      cfg.Validate(),
		store:       store,
		transformer: transform.Resize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle runs the request to completion. It never returns a partially
// populated Response.
func (p *Pipeline) Handle(ctx context.Context, req Request) Response {
	start := time.Now()

	resp, kind := p.handle(ctx, req)

	RecordRequest(kind, resp.StatusCode, time.Since(start))
	return resp
}

func (p *Pipeline) handle(ctx context.Context, req Request) (Response, Kind) {
	if p.cfgErr != nil {
		return fail(ctx, newError(KindConfiguration, p.cfgErr, "%s", p.cfgErr.Error()))
	}

	if req.Path == "" {
		return fail(ctx, newError(KindPathMissing, nil, "Path does not exist: %s", req.Path))
	}

	keys, err := resolver.Resolve(req.Path, req.Stage)
	if err != nil {
		return fail(ctx, newError(KindParse, err, "%s", err.Error()))
	}

	log := logger.Ctx(ctx).With().
		Str("source_key", keys.SourceKey).
		Str("target_key", keys.TargetKey).
		Int("width", keys.Width).
		Int("height", keys.Height).
		Logger()
	ctx = logger.WithLogger(ctx, &log)

	obj, tags, err := p.fetch(ctx, keys.SourceKey)
	if err != nil {
		return fail(ctx, newError(KindFetch, err,
			"Could not get original object [%s] from bucket [%s]:\n\n%s",
			keys.SourceKey, p.store.Bucket(), err.Error()))
	}
	defer obj.Body.Close()

	if obj.ContentType != "" && !strings.HasPrefix(obj.ContentType, "image") {
		return fail(ctx, newError(KindNotAnImage, nil, "Request is not an image"))
	}

	if e := checkEligibility(tags); e != nil {
		return fail(ctx, e)
	}

	data, err := p.render(ctx, obj, keys)
	if err != nil {
		return fail(ctx, newError(KindTransform, err, "Could not save thumbnail to the bucket:\n\n%s", err.Error()))
	}

	err = p.store.PutObject(ctx, keys.TargetKey, data, storage.PutOptions{
		CacheControl:    p.cfg.CacheControl,
		ContentType:     obj.ContentType,
		ContentEncoding: p.cfg.Compression.ContentEncoding(),
		Tags:            storage.Tags{TagThumbnail: tagTrue},
	})
	if err != nil {
		return fail(ctx, newError(KindStore, err, "Could not save thumbnail to the bucket:\n\n%s", err.Error()))
	}

	location := p.cfg.RootURL + keys.TargetKey
	log.Info().Str("location", location).Str("size", humanize.Bytes(uint64(len(data)))).Msg("thumbnail stored")

	return Response{
		StatusCode: http.StatusMovedPermanently,
		Headers:    map[string]string{HeaderLocation: location},
	}, KindNone
}

// fetch reads the source object and then its tag set. The body is closed
// when the tag read fails.
func (p *Pipeline) fetch(ctx context.Context, key string) (*storage.Object, storage.Tags, error) {
	obj, err := p.store.GetObject(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	tags, err := p.store.GetObjectTags(ctx, key)
	if err != nil {
		obj.Body.Close()
		return nil, nil, err
	}

	logger.Ctx(ctx).Debug().
		Str("content_type", obj.ContentType).
		Int64("content_length", obj.ContentLength).
		Int("tags", len(tags)).
		Msg("fetched source object")

	return obj, tags, nil
}

// checkEligibility applies both tag gates. A nil tag set passes; a present
// one must carry auto_thumbnail=true and must not carry thumbnail=true.
func checkEligibility(tags storage.Tags) *Error {
	if tags == nil {
		return nil
	}
	if !tags.Has(TagAutoThumbnail, tagTrue) {
		return newError(KindNotEligible, nil, "Image is not eligible for creating automatic thumbnails")
	}
	if tags.Has(TagThumbnail, tagTrue) {
		return newError(KindAlreadyThumbnail, nil, "Image is already a thumbnail")
	}
	return nil
}

// render resizes, encodes and compresses the source body into memory.
func (p *Pipeline) render(ctx context.Context, obj *storage.Object, keys resolver.Keys) ([]byte, error) {
	start := time.Now()

	src := &compression.CountingReader{R: obj.Body}
	resized := p.transformer(src, transform.Options{
		Width:        keys.Width,
		Height:       keys.Height,
		ContentType:  obj.ContentType,
		JPEGQuality:  p.cfg.JPEGQuality,
		MaxDimension: p.cfg.MaxDimension,
	})
	defer resized.Close()

	encoded := &compression.CountingReader{R: resized}
	compressed, err := compression.CompressReader(p.cfg.Compression, encoded)
	if err != nil {
		return nil, fmt.Errorf("could not transform stream to buffer: %w", err)
	}
	defer compressed.Close()

	data, err := io.ReadAll(compressed)
	if err != nil {
		return nil, fmt.Errorf("could not transform stream to buffer: %w", err)
	}

	took := time.Since(start)
	compression.RecordCompression(p.cfg.Compression, int(encoded.N), len(data), took)
	ThumbnailBytes.Observe(float64(len(data)))

	logger.Ctx(ctx).Debug().
		Str("source_size", humanize.Bytes(uint64(src.N))).
		Str("encoded_size", humanize.Bytes(uint64(encoded.N))).
		Str("compressed_size", humanize.Bytes(uint64(len(data)))).
		Str("compression", p.cfg.Compression.String()).
		Dur("took", took).
		Msg("thumbnail rendered")

	return data, nil
}

func fail(ctx context.Context, e *Error) (Response, Kind) {
	ev := logger.Ctx(ctx).Warn()
	if status := e.StatusCode(); status == http.StatusFailedDependency || status >= http.StatusInternalServerError {
		ev = logger.Ctx(ctx).Error()
	}
	ev.Err(e.Err).Str("kind", e.Kind.String()).Int("status", e.StatusCode()).Msg(firstLine(e.Message))

	return Response{
		StatusCode: e.StatusCode(),
		Body:       e.Message,
		Err:        e,
	}, e.Kind
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSuffix(s[:i], ":")
	}
	return s
}
