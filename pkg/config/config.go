// Package config loads the s3peek YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Supported store providers.
const (
	ProviderAWS   = "aws"
	ProviderMinio = "minio"
)

// Default values applied by SetDefaults.
const (
	DefaultListen            = ":8081"
	DefaultMaxKeys           = 1000
	DefaultChunkSize         = 16384
	DefaultStreamChunkSize   = 65536
	DefaultHeadLines         = 10
	DefaultHeadBytes         = 1 << 20
	DefaultPreviewBytes      = 16384
	DefaultSampleCount       = 10
	DefaultSampleRadius      = 4096
	DefaultSampleConcurrency = 4
	DefaultHealthSchedule    = "@every 30s"
	DefaultHealthTimeout     = 5 * time.Second
)

var (
	// ErrUnknownProvider is returned when s3.provider is neither aws nor minio.
	ErrUnknownProvider = errors.New("unknown store provider")
	// ErrInvalidValue is returned for negative sizes or counts.
	ErrInvalidValue = errors.New("invalid configuration value")
	// ErrMissingEndpoint is returned when the minio provider has no endpoint.
	ErrMissingEndpoint = errors.New("minio provider requires an endpoint")
)

// Config is the struct for the configuration
type Config struct {
	S3       S3Config      `yaml:"s3"`
	Server   ServerConfig  `yaml:"server"`
	Preview  PreviewConfig `yaml:"preview"`
	Health   HealthConfig  `yaml:"health"`
	LogLevel string        `yaml:"loglevel"`
}

// S3Config holds the object store connection settings.
type S3Config struct {
	Provider      string `yaml:"provider"`
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"accesskey"`
	SecretKey     string `yaml:"secretkey"`
	Region        string `yaml:"region"`
	SsoAwsProfile string `yaml:"ssoawsprofile"`
	UseSSL        bool   `yaml:"usessl"`
	// MaxKeys is the listing page size; larger prefixes are refused.
	MaxKeys int `yaml:"maxkeys"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// PreviewConfig tunes previews, samples and downloads.
type PreviewConfig struct {
	ChunkSize         int   `yaml:"chunksize"`
	StreamChunkSize   int   `yaml:"streamchunksize"`
	HeadLines         int   `yaml:"headlines"`
	HeadBytes         int   `yaml:"headbytes"`
	MaxBytes          int   `yaml:"previewbytes"`
	SampleCount       int   `yaml:"samplecount"`
	SampleRadius      int64 `yaml:"sampleradius"`
	SampleConcurrency int   `yaml:"sampleconcurrency"`
}

// HealthConfig drives the periodic store check.
type HealthConfig struct {
	Schedule string        `yaml:"schedule"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ReadYamlCnxFile reads a yaml file and returns a Config struct.
// Defaults are applied and the result is validated.
func ReadYamlCnxFile(filename string) (Config, error) {
	var cfg Config

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("error reading YAML file: %w", err)
	}

	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing YAML file: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SetDefaults fills the zero values.
func (c *Config) SetDefaults() {
	if c.S3.Provider == "" {
		c.S3.Provider = ProviderAWS
	}
	if c.S3.MaxKeys == 0 {
		c.S3.MaxKeys = DefaultMaxKeys
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	setInt(&c.Preview.ChunkSize, DefaultChunkSize)
	setInt(&c.Preview.StreamChunkSize, DefaultStreamChunkSize)
	setInt(&c.Preview.HeadLines, DefaultHeadLines)
	setInt(&c.Preview.HeadBytes, DefaultHeadBytes)
	setInt(&c.Preview.MaxBytes, DefaultPreviewBytes)
	setInt(&c.Preview.SampleCount, DefaultSampleCount)
	setInt(&c.Preview.SampleConcurrency, DefaultSampleConcurrency)
	if c.Preview.SampleRadius == 0 {
		c.Preview.SampleRadius = DefaultSampleRadius
	}
	if c.Health.Schedule == "" {
		c.Health.Schedule = DefaultHealthSchedule
	}
	if c.Health.Timeout == 0 {
		c.Health.Timeout = DefaultHealthTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate checks the provider and rejects negative tuning values.
func (c Config) Validate() error {
	switch c.S3.Provider {
	case ProviderAWS:
	case ProviderMinio:
		if c.S3.Endpoint == "" {
			return ErrMissingEndpoint
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.S3.Provider)
	}

	checks := []struct {
		name  string
		value int64
	}{
		{"s3.maxkeys", int64(c.S3.MaxKeys)},
		{"preview.chunksize", int64(c.Preview.ChunkSize)},
		{"preview.streamchunksize", int64(c.Preview.StreamChunkSize)},
		{"preview.headlines", int64(c.Preview.HeadLines)},
		{"preview.headbytes", int64(c.Preview.HeadBytes)},
		{"preview.previewbytes", int64(c.Preview.MaxBytes)},
		{"preview.samplecount", int64(c.Preview.SampleCount)},
		{"preview.sampleradius", c.Preview.SampleRadius},
		{"preview.sampleconcurrency", int64(c.Preview.SampleConcurrency)},
		{"health.timeout", int64(c.Health.Timeout)},
	}
	for _, chk := range checks {
		if chk.value < 0 {
			return fmt.Errorf("%w: %s must not be negative (got %d)", ErrInvalidValue, chk.name, chk.value)
		}
	}
	return nil
}
