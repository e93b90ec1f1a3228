// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	order   []string
	failKey string
}

func (f *fakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := aws.ToString(in.Key)
	if key == f.failKey {
		return nil, errors.New("AccessDenied")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[aws.ToString(in.Bucket)+"/"+key] = data
	f.order = append(f.order, key)
	return &s3.PutObjectOutput{}, nil
}

func writeArtifacts(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build-zip"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "provision"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build-zip", "image-compress-lambda.zip"), []byte("PK zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "provision", "main.yaml"), []byte("Resources: {}\n"), 0o644))
	return root
}

func TestUpload(t *testing.T) {
	t.Parallel()

	root := writeArtifacts(t)
	up := &fakeUploader{}

	require.NoError(t, Upload(context.Background(), up, "deploy-bucket", DefaultArtifacts(root)))

	assert.Equal(t, []string{"lambda/image-compress-lambda.zip", "provision/main.yaml"}, up.order)
	assert.Equal(t, "PK zip", string(up.objects["deploy-bucket/lambda/image-compress-lambda.zip"]))
	assert.Equal(t, "Resources: {}\n", string(up.objects["deploy-bucket/provision/main.yaml"]))
}

func TestUpload_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	root := writeArtifacts(t)
	up := &fakeUploader{failKey: "lambda/image-compress-lambda.zip"}

	err := Upload(context.Background(), up, "deploy-bucket", DefaultArtifacts(root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://deploy-bucket/lambda/image-compress-lambda.zip")
	assert.Empty(t, up.order)
}

func TestUpload_MissingFile(t *testing.T) {
	t.Parallel()

	up := &fakeUploader{}
	err := Upload(context.Background(), up, "b", DefaultArtifacts(t.TempDir()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestVerifyEnv(t *testing.T) {
	t.Setenv(EnvBucket, "")
	t.Setenv(EnvRegion, "eu-central-1")

	err := VerifyEnv(EnvBucket, EnvRegion)
	require.Error(t, err)
	assert.Equal(t, "Environment variable S3_BUCKET is not set.", err.Error())

	t.Setenv(EnvBucket, "deploy-bucket")
	assert.NoError(t, VerifyEnv(EnvBucket, EnvRegion))
}
