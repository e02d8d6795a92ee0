package s3svc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sgaunet/s3peek/pkg/config"
)

// ErrNoAwsConfigMethod is returned when neither an endpoint, an SSO profile
// nor the default credential chain can be used.
var ErrNoAwsConfigMethod = errors.New("no method to initialize aws.Config")

// GetAwsConfig returns an aws.Config
// An explicit endpoint uses static credentials, then the SSO profile is
// tried, then the default credential chain when no keys are given.
func GetAwsConfig(ctx context.Context, cfg config.S3Config, log *slog.Logger) (aws.Config, error) {
	if cfg.Endpoint != "" {
		log.Debug("Try to use S3 endpoint", slog.String("endpoint", cfg.Endpoint))
		return aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		}, nil
	}

	if cfg.SsoAwsProfile != "" {
		log.Debug("Try to use SSO profile")
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithSharedConfigProfile(cfg.SsoAwsProfile),
		)
		if err != nil {
			log.Error("Error loading SSO profile", slog.String("error", err.Error()))
			return awsCfg, fmt.Errorf("error loading SSO profile: %w", err)
		}
		log.Debug("SSO profile loaded")
		return awsCfg, nil
	}

	if cfg.AccessKey == "" && cfg.SecretKey == "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			log.Error("Error loading default config", slog.String("error", err.Error()))
			return awsCfg, fmt.Errorf("error loading default config: %w", err)
		}
		log.Debug("Default config loaded")
		return awsCfg, nil
	}
	return aws.Config{}, ErrNoAwsConfigMethod
}

// NewClient builds the S3 client for cfg. A custom endpoint is addressed in
// path style so that MinIO or Ceph gateways work without DNS buckets.
// optFns are applied after the endpoint options.
func NewClient(ctx context.Context, cfg config.S3Config, log *slog.Logger, optFns ...func(*s3.Options)) (*s3.Client, error) {
	awsCfg, err := GetAwsConfig(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}, func(o *s3.Options) {
		for _, fn := range optFns {
			fn(o)
		}
	}), nil
}
