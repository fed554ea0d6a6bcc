// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the shared config chain from reading the developer's files.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", dir+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", dir+"/credentials")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want options
	}{
		{"none", nil, options{}},
		{"profile", []Option{WithProfile("team")}, options{profile: "team"}},
		{"region", []Option{WithRegion("eu-west-1")}, options{region: "eu-west-1"}},
		{"last wins", []Option{WithRegion("us-east-1"), WithRegion("eu-west-1")}, options{region: "eu-west-1"}},
		{
			"endpoint",
			[]Option{WithEndpoint("http://localhost:9000"), WithPathStyle(true)},
			options{endpoint: "http://localhost:9000", pathStyle: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(tt.opts))
		})
	}
}

func TestWithRetryer(t *testing.T) {
	o := collect([]Option{WithRetryer(func() awsv2.Retryer { return retry.NewStandard() })})
	require.NotNil(t, o.retryer)
	assert.NotNil(t, o.retryer())
}

func TestLoadConfig(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig(context.Background(), WithRegion("us-west-2"))
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)

	cfg, err = LoadConfig(context.Background(),
		WithRegion("eu-central-1"),
		WithRetryer(func() awsv2.Retryer { return retry.NewStandard() }),
	)
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", cfg.Region)
}

func TestLoadConfig_MissingProfile(t *testing.T) {
	isolate(t)
	_, err := LoadConfig(context.Background(), WithProfile("does-not-exist"))
	assert.Error(t, err)
}

func TestS3Options(t *testing.T) {
	assert.Empty(t, S3Options())

	var so s3v2.Options
	for _, fn := range S3Options(WithEndpoint("http://localhost:9000"), WithPathStyle(true)) {
		fn(&so)
	}
	require.NotNil(t, so.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *so.BaseEndpoint)
	assert.True(t, so.UsePathStyle)
}

func TestNewS3(t *testing.T) {
	isolate(t)

	client, err := NewS3(context.Background(), WithRegion("us-east-1"), WithEndpoint("http://localhost:9000"))
	require.NoError(t, err)
	assert.IsType(t, &s3v2.Client{}, client)
	assert.Equal(t, "us-east-1", client.Options().Region)
	require.NotNil(t, client.Options().BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *client.Options().BaseEndpoint)
}
