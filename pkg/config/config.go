// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the thumbnail service settings from the environment,
// an optional config file and command line flags.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/LeeDigitalWorks/zapthumb/pkg/compression"
	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"
	"github.com/LeeDigitalWorks/zapthumb/pkg/storage"
	"github.com/LeeDigitalWorks/zapthumb/pkg/transform"

	"github.com/spf13/viper"
)

// Keys understood by Load. With AutomaticEnv each key is also read from the
// upper-cased environment variable of the same name.
const (
	KeyBucket          = "bucket"
	KeyRegion          = "region"
	KeyRootURL         = "root_url"
	KeyStage           = "stage"
	KeyStorageType     = "storage_type"
	KeyEndpoint        = "s3_endpoint"
	KeyPathStyle       = "s3_path_style"
	KeyAccessKeyID     = "aws_access_key_id"
	KeySecretAccessKey = "aws_secret_access_key"
	KeyCompression     = "compression"
	KeyJPEGQuality     = "jpeg_quality"
	KeyMaxDimension    = "max_dimension"
	KeyCacheControl    = "cache_control"
)

const (
	DefaultCacheControl = "public, max-age=31536000"
	fileName            = "zapthumb"
)

// ConfigurationFileDirectory is searched first for zapthumb.{yaml,toml,json}.
var ConfigurationFileDirectory string

type Config struct {
	Bucket  string
	Region  string
	RootURL string
	// Stage is the API gateway stage stripped from request paths.
	Stage string

	StorageType     storage.Type
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string

	Compression  compression.Algorithm
	JPEGQuality  int
	MaxDimension int
	CacheControl string
}

// Required values in the order they are checked.
func (c Config) required() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"bucket", c.Bucket},
		{"region", c.Region},
		{"rootUrl", c.RootURL},
	}
}

// Validate reports the first missing required value.
func (c Config) Validate() error {
	for _, r := range c.required() {
		if r.value == "" {
			return fmt.Errorf("Variable '%s' was not defined", r.name)
		}
	}
	return nil
}

// Storage returns the storage settings the pipeline writes to.
func (c Config) Storage() storage.Config {
	return storage.Config{
		Type:            c.StorageType,
		Bucket:          c.Bucket,
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		PathStyle:       c.PathStyle,
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyStorageType, string(storage.TypeS3))
	v.SetDefault(KeyCompression, string(compression.Gzip))
	v.SetDefault(KeyJPEGQuality, transform.DefaultJPEGQuality)
	v.SetDefault(KeyMaxDimension, transform.DefaultMaxDimension)
	v.SetDefault(KeyCacheControl, DefaultCacheControl)
}

// Getter reads configuration values by key. *viper.Viper satisfies it
// through Viper; the command line layer overrides it with explicit flags.
type Getter interface {
	String(key string) string
	Int(key string) int
	Bool(key string) bool
}

// Viper adapts v to Getter.
func Viper(v *viper.Viper) Getter {
	return viperGetter{v}
}

type viperGetter struct{ v *viper.Viper }

func (g viperGetter) String(key string) string { return g.v.GetString(key) }
func (g viperGetter) Int(key string) int       { return g.v.GetInt(key) }
func (g viperGetter) Bool(key string) bool     { return g.v.GetBool(key) }

// Prepare enables environment lookup and registers defaults on v.
func Prepare(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	SetDefaults(v)
}

// FromViper builds a Config from v. Values are not validated.
func FromViper(v *viper.Viper) Config {
	Prepare(v)
	return From(Viper(v))
}

// From builds a Config from g. Values are not validated.
func From(g Getter) Config {
	return Config{
		Bucket:          g.String(KeyBucket),
		Region:          g.String(KeyRegion),
		RootURL:         g.String(KeyRootURL),
		Stage:           g.String(KeyStage),
		StorageType:     storage.Type(g.String(KeyStorageType)),
		Endpoint:        g.String(KeyEndpoint),
		PathStyle:       g.Bool(KeyPathStyle),
		AccessKeyID:     g.String(KeyAccessKeyID),
		SecretAccessKey: g.String(KeySecretAccessKey),
		Compression:     compression.ParseAlgorithm(g.String(KeyCompression)),
		JPEGQuality:     g.Int(KeyJPEGQuality),
		MaxDimension:    g.Int(KeyMaxDimension),
		CacheControl:    g.String(KeyCacheControl),
	}
}

// Load prepares the global viper instance, merging the config file if one
// is found.
func Load() {
	LoadFile(viper.GetViper(), fileName)
	Prepare(viper.GetViper())
}

// LoadFile merges the named config file into v. A missing file is not an
// error; the service can run from environment variables alone.
func LoadFile(v *viper.Viper, name string) bool {
	v.SetConfigName(name)
	if ConfigurationFileDirectory != "" {
		v.AddConfigPath(ResolvePath(ConfigurationFileDirectory))
	}
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.zapthumb")
	v.AddConfigPath("/etc/zapthumb/")

	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Debug().Msgf("Config file not found: %s", name)
			return false
		}
		logger.Warn().Err(err).Msgf("Failed to load config file: %s", name)
		return false
	}
	logger.Info().Msgf("Loaded config file: %s", v.ConfigFileUsed())
	return true
}

// ResolvePath expands "~" and environment variables in path.
func ResolvePath(path string) string {
	if !strings.Contains(path, "~") && !strings.Contains(path, "$") {
		return path
	}

	if path == "~" {
		if usr, err := user.Current(); err == nil {
			path = usr.HomeDir
		}
	} else if strings.HasPrefix(path, "~/") {
		if usr, err := user.Current(); err == nil {
			path = filepath.Join(usr.HomeDir, path[2:])
		}
	}

	path = os.ExpandEnv(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
