// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/LeeDigitalWorks/zapthumb/pkg/config"
	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"
	"github.com/LeeDigitalWorks/zapthumb/pkg/storage"
	"github.com/LeeDigitalWorks/zapthumb/pkg/thumbnail"
)

// newPipeline connects to storage and builds the pipeline. An incomplete
// configuration is not fatal: the pipeline answers every request with the
// configuration error, which is what API Gateway callers expect to see.
func newPipeline(ctx context.Context, cfg config.Config) *thumbnail.Pipeline {
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("configuration incomplete, all requests will fail")
		return thumbnail.New(cfg, nil)
	}

	store, err := storage.New(ctx, cfg.Storage())
	if err != nil {
		logger.Fatal().Err(err).Str("storage_type", string(cfg.StorageType)).Msg("failed to create storage")
	}

	logger.Info().
		Str("bucket", store.Bucket()).
		Str("storage_type", string(store.Type())).
		Str("stage", cfg.Stage).
		Str("compression", cfg.Compression.String()).
		Msg("thumbnail pipeline ready")

	return thumbnail.New(cfg, store)
}
