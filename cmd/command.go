// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/LeeDigitalWorks/zapthumb/pkg/config"
	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "zapthumb",
	Short: "zapthumb - on-demand image thumbnails for S3",
	Long: `zapthumb creates resized, compressed copies of images stored in S3.
A request for <prefix>/<width>x<height>/<name> resizes <prefix>/<name>,
stores the result under the requested key and redirects to it.`,
	PersistentPreRun: initializeLogging,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&config.ConfigurationFileDirectory, "config_dir", ".", "Directory for configuration files")
	f.String("log_level", "", "Log level (trace, debug, info, warn, error). Env: LOG_LEVEL")

	addConfigFlags(f)
	viper.BindPFlags(f)
}

// addConfigFlags registers a flag for every configuration key. Flags take
// precedence over the config file and environment only when set.
func addConfigFlags(f *pflag.FlagSet) {
	f.String(config.KeyBucket, "", "Bucket holding source images and thumbnails. Env: BUCKET")
	f.String(config.KeyRegion, "", "Bucket region. Env: REGION")
	f.String(config.KeyRootURL, "", "URL prefix thumbnails are redirected to. Env: ROOT_URL")
	f.String(config.KeyStage, "", "Deployment stage stripped from request paths. Env: STAGE")
	f.String(config.KeyStorageType, "s3", "Storage backend (s3, memory). Env: STORAGE_TYPE")
	f.String(config.KeyEndpoint, "", "S3-compatible endpoint URL. Env: S3_ENDPOINT")
	f.Bool(config.KeyPathStyle, false, "Use path-style bucket addressing. Env: S3_PATH_STYLE")
	f.String(config.KeyCompression, "gzip", "Content encoding of stored thumbnails (gzip, zstd, none). Env: COMPRESSION")
	f.Int(config.KeyJPEGQuality, 80, "JPEG encoder quality. Env: JPEG_QUALITY")
	f.Int(config.KeyMaxDimension, 10000, "Largest accepted width or height, negative to disable. Env: MAX_DIMENSION")
	f.String(config.KeyCacheControl, config.DefaultCacheControl, "Cache-Control of stored thumbnails. Env: CACHE_CONTROL")
}

func initializeLogging(cmd *cobra.Command, args []string) {
	level, _ := cmd.Flags().GetString("log_level")
	if level == "" {
		return
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		logger.Warn().Err(err).Str("log_level", level).Msg("ignoring invalid log level")
		return
	}
	logger.SetLevel(lvl)
}

// loadConfig merges the config file, environment and flags of cmd.
func loadConfig(cmd *cobra.Command) config.Config {
	config.Load()
	return config.From(NewFlagLoader(cmd))
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
