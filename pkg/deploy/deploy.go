// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploy uploads the packaged Lambda function and its provisioning
// template to the deployment bucket.
package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
)

const (
	EnvBucket = "S3_BUCKET"
	EnvRegion = "S3_REGION"
)

// Artifact maps a local file to the key it is uploaded under.
type Artifact struct {
	Path string
	Key  string
}

// DefaultArtifacts returns the function bundle and template relative to root.
func DefaultArtifacts(root string) []Artifact {
	return []Artifact{
		{Path: filepath.Join(root, "build-zip", "image-compress-lambda.zip"), Key: "lambda/image-compress-lambda.zip"},
		{Path: filepath.Join(root, "provision", "main.yaml"), Key: "provision/main.yaml"},
	}
}

// Uploader is the subset of *s3.Client used by Upload.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// VerifyEnv returns an error naming the first unset variable.
func VerifyEnv(names ...string) error {
	for _, name := range names {
		if os.Getenv(name) == "" {
			return fmt.Errorf("Environment variable %s is not set.", name)
		}
	}
	return nil
}

// Upload puts every artifact into bucket, in order, stopping at the first failure.
func Upload(ctx context.Context, client Uploader, bucket string, artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := upload(ctx, client, bucket, a); err != nil {
			return err
		}
	}
	logger.Info().Str("bucket", bucket).Int("artifacts", len(artifacts)).Msg("Upload successful")
	return nil
}

func upload(ctx context.Context, client Uploader, bucket string, a Artifact) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", a.Path, err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("key", a.Key).
		Str("size", humanize.Bytes(uint64(info.Size()))).
		Msgf("Upload '%s' to '%s'", a.Key, bucket)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(a.Key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", a.Path, bucket, a.Key, err)
	}
	return nil
}
