// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/staranto/redline/internal/log"
)

// options holds optional overrides for config loading and client
// construction.
type options struct {
	profile   string
	region    string
	endpoint  string
	pathStyle bool
	retryer   func() awsv2.Retryer
}

// Option customizes how AWS config is loaded and how the S3 client is built.
// No options means the shell's environment and shared config chain
// (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS) decide.
type Option func(*options)

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LoadConfig loads AWS SDK v2 config with the profile, region and retryer
// overrides applied.
func LoadConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	o := collect(opts)
	log.Debugf("aws opts: profile=%s region=%s endpoint=%s", o.profile, o.region, o.endpoint)

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.retryer != nil {
		loadOpts = append(loadOpts, config.WithRetryer(o.retryer))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.Debugf("aws config load err: err=%v", err)
		return awsv2.Config{}, err
	}
	return cfg, nil
}

// S3Options returns the client options implied by opts: a base endpoint
// override and path-style addressing.
func S3Options(opts ...Option) []func(*s3v2.Options) {
	o := collect(opts)
	var fns []func(*s3v2.Options)
	if o.endpoint != "" {
		endpoint := o.endpoint
		fns = append(fns, func(so *s3v2.Options) { so.BaseEndpoint = awsv2.String(endpoint) })
	}
	if o.pathStyle {
		fns = append(fns, func(so *s3v2.Options) { so.UsePathStyle = true })
	}
	return fns
}

// NewS3 loads config and constructs an S3 client in one go.
func NewS3(ctx context.Context, opts ...Option) (*s3v2.Client, error) {
	cfg, err := LoadConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3v2.NewFromConfig(cfg, S3Options(opts...)...)
	log.Debugf("s3 client created: region=%s", cfg.Region)
	return client, nil
}

// WithProfile sets the shared config profile.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the S3 client at a non-AWS endpoint such as MinIO.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithPathStyle forces bucket-in-path addressing, which most S3 compatible
// servers require.
func WithPathStyle(on bool) Option {
	return func(o *options) { o.pathStyle = on }
}

// WithRetryer injects a custom retryer; SDK defaults are used otherwise.
func WithRetryer(newRetryer func() awsv2.Retryer) Option {
	return func(o *options) { o.retryer = newRetryer }
}
