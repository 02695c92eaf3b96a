// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all server configuration.
type Config struct {
	// Server
	ListenAddr  string
	MetricsAddr string

	// Logging
	LogLevel  string
	LogFormat string

	// Resource serving
	PublicDir    string // filesystem directory served under PublicPrefix
	PublicPrefix string
	AssetsPrefix string // embedded asset bundle mount point
	CacheMaxAge  int    // seconds; 0 disables Cache-Control

	// S3 resources (optional — enabled when S3_BUCKET is set)
	S3Prefix       string // mount point for the S3 resolver
	S3Endpoint     string
	S3Bucket       string
	S3KeyPrefix    string
	S3AccessKey    string
	S3SecretKey    string
	S3Region       string
	S3UsePathStyle bool
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:   envOr("LISTEN_ADDR", ":8080"),
		MetricsAddr:  envOr("METRICS_ADDR", ":9090"),
		LogLevel:     envOr("LOG_LEVEL", "info"),
		LogFormat:    envOr("LOG_FORMAT", "json"),
		PublicDir:    envOr("PUBLIC_DIR", "public"),
		PublicPrefix: envOr("PUBLIC_PREFIX", "/public"),
		AssetsPrefix: envOr("ASSETS_PREFIX", "/assets"),
		CacheMaxAge:  envInt("CACHE_MAX_AGE", 3600),

		S3Prefix:       envOr("S3_PREFIX", "/s3"),
		S3Endpoint:     envOr("S3_ENDPOINT", ""),
		S3Bucket:       envOr("S3_BUCKET", ""),
		S3KeyPrefix:    envOr("S3_KEY_PREFIX", ""),
		S3AccessKey:    envOr("S3_ACCESS_KEY", ""),
		S3SecretKey:    envOr("S3_SECRET_KEY", ""),
		S3Region:       envOr("S3_REGION", "us-east-1"),
		S3UsePathStyle: envBool("S3_USE_PATH_STYLE", true),
	}

	if cfg.PublicDir == "" {
		return nil, fmt.Errorf("PUBLIC_DIR is required")
	}
	if cfg.S3Bucket != "" && cfg.S3AccessKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY is required when S3_BUCKET is set")
	}

	return cfg, nil
}

// S3Enabled reports whether the S3 resolver should be mounted.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
