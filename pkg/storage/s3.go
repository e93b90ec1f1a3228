// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/LeeDigitalWorks/zapthumb/pkg/s3client"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

func init() {
	Register(TypeS3, func(ctx context.Context, cfg Config) (Storage, error) {
		return NewS3(ctx, cfg)
	})
}

// S3 implements Storage on top of an S3 bucket
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 creates an S3 storage
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket required for S3 storage")
	}

	client, err := s3client.New(ctx, s3client.Config{
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		PathStyle:       cfg.PathStyle,
	})
	if err != nil {
		return nil, err
	}

	return NewS3WithClient(client, cfg.Bucket), nil
}

// NewS3WithClient wraps an existing client.
func NewS3WithClient(client *s3.Client, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

func (s *S3) Type() Type {
	return TypeS3
}

func (s *S3) Bucket() string {
	return s.bucket
}

func (s *S3) GetObject(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("get object", err)
	}

	return &Object{
		Body:          out.Body,
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: aws.ToInt64(out.ContentLength),
	}, nil
}

func (s *S3) GetObjectTags(ctx context.Context, key string) (Tags, error) {
	out, err := s.client.GetObjectTagging(ctx, &s3.GetObjectTaggingInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("get object tagging", err)
	}
	if out.TagSet == nil {
		return nil, nil
	}

	tags := make(Tags, len(out.TagSet))
	for _, t := range out.TagSet {
		tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return tags, nil
}

func (s *S3) PutObject(ctx context.Context, key string, data []byte, opts PutOptions) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if opts.CacheControl != "" {
		in.CacheControl = aws.String(opts.CacheControl)
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if opts.ContentEncoding != "" {
		in.ContentEncoding = aws.String(opts.ContentEncoding)
	}
	if tagging := opts.Tags.Encode(); tagging != "" {
		in.Tagging = aws.String(tagging)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return classify("put object", err)
	}
	return nil
}

// classify wraps SDK errors so callers can test for ErrNotFound and
// ErrAccessDenied while keeping the SDK message.
func classify(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%s: %w: %w", op, ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
