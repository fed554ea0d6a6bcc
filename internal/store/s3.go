// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/staranto/redline/internal/log"
)

// ObjectAPI is the part of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3v2.ListObjectsV2Input, optFns ...func(*s3v2.Options)) (*s3v2.ListObjectsV2Output, error)
}

// S3 keeps records as <prefix>/<id>.json objects.
type S3 struct {
	client ObjectAPI
	bucket string
	prefix string
}

var _ Store = (*S3)(nil)

func NewS3(client ObjectAPI, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) key(id string) string {
	return path.Join(s.prefix, id+".json")
}

func (s *S3) Put(ctx context.Context, r *Record) (string, error) {
	if err := Seal(r); err != nil {
		return "", err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(s.bucket),
		Key:         awsv2.String(s.key(r.ID)),
		Body:        bytes.NewReader(data),
		ContentType: awsv2.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("putting s3://%s/%s: %w", s.bucket, s.key(r.ID), err)
	}
	log.WithField("bucket", s.bucket).WithField("key", s.key(r.ID)).Debug("s3 store put")
	return r.ID, nil
}

func (s *S3) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.read(ctx, s.key(id))
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return decode(data)
}

func (s *S3) read(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3) List(ctx context.Context) ([]Meta, error) {
	prefix := s.prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var metas []Meta
	p := s3v2.NewListObjectsV2Paginator(s.client, &s3v2.ListObjectsV2Input{
		Bucket: awsv2.String(s.bucket),
		Prefix: awsv2.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := awsv2.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			data, err := s.read(ctx, key)
			if err != nil {
				return nil, err
			}
			r, err := decode(data)
			if err != nil {
				log.WithError(err).Warnf("skipping s3://%s/%s", s.bucket, key)
				continue
			}
			metas = append(metas, MetaOf(r))
		}
	}

	sort.SliceStable(metas, func(i, j int) bool { return metas[i].CreatedAt.Before(metas[j].CreatedAt) })
	return metas, nil
}
