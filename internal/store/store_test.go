// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/redline/internal/cacheutil"
	"github.com/staranto/redline/internal/config"
)

const transformJSON = `{"base":{"type":"doc"},"steps":[{"stepType":"replace","from":0,"to":0},{"stepType":"replace","from":1,"to":1}]}`

func record(author string, at time.Time) *Record {
	return &Record{
		Kind:      KindRevision,
		Author:    author,
		BaseHash:  "abc",
		CreatedAt: at,
		Transform: json.RawMessage(transformJSON),
	}
}

// memS3 is an in-memory ObjectAPI.
type memS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemS3() *memS3 { return &memS3{objects: map[string][]byte{}} }

func (m *memS3) PutObject(_ context.Context, in *s3v2.PutObjectInput, _ ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[awsv2.ToString(in.Key)] = data
	return &s3v2.PutObjectOutput{}, nil
}

func (m *memS3) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[awsv2.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memS3) ListObjectsV2(_ context.Context, in *s3v2.ListObjectsV2Input, _ ...func(*s3v2.Options)) (*s3v2.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, awsv2.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3v2.ListObjectsV2Output{IsTruncated: awsv2.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: awsv2.String(k)})
	}
	return out, nil
}

func useCache(t *testing.T) {
	t.Helper()
	t.Setenv(cacheutil.EnvDir, t.TempDir())
	t.Setenv(cacheutil.EnvEnabled, "1")
}

func TestID(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := record("alice", at)
	b := record("alice", at)
	c := record("bob", at)

	idA, err := ID(a)
	require.NoError(t, err)
	idB, _ := ID(b)
	idC, _ := ID(c)

	assert.Len(t, idA, 64)
	assert.Equal(t, idA, idB)
	assert.NotEqual(t, idA, idC)

	a.ID = "ignored"
	again, _ := ID(a)
	assert.Equal(t, idA, again, "id field does not feed the digest")
}

func TestSeal(t *testing.T) {
	r := &Record{Kind: KindMerge, BaseHash: "abc"}
	require.NoError(t, Seal(r))
	assert.False(t, r.CreatedAt.IsZero())
	assert.NotEmpty(t, r.ID)

	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	r = record("alice", at)
	require.NoError(t, Seal(r))
	assert.Equal(t, at, r.CreatedAt)
}

func TestMetaOf(t *testing.T) {
	r := record("alice", time.Now())
	require.NoError(t, Seal(r))
	m := MetaOf(r)
	assert.Equal(t, r.ID, m.ID)
	assert.Equal(t, KindRevision, m.Kind)
	assert.Equal(t, "alice", m.Author)
	assert.Equal(t, 2, m.Steps)

	assert.Zero(t, MetaOf(&Record{}).Steps)
}

func TestDecode_Tampered(t *testing.T) {
	r := record("alice", time.Now())
	require.NoError(t, Seal(r))
	r.Author = "mallory"
	data, err := json.Marshal(r)
	require.NoError(t, err)

	_, err = decode(data)
	assert.Error(t, err)
	_, err = decode([]byte("{"))
	assert.Error(t, err)
}

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"local": func(t *testing.T) Store {
			useCache(t)
			s, err := NewLocal()
			require.NoError(t, err)
			return s
		},
		"s3": func(t *testing.T) Store {
			return NewS3(newMemS3(), "bucket", "team")
		},
	}

	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := mk(t)

			metas, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, metas)

			now := time.Now().UTC()
			later := record("bob", now)
			earlier := record("alice", now.Add(-time.Hour))
			idLater, err := s.Put(ctx, later)
			require.NoError(t, err)
			idEarlier, err := s.Put(ctx, earlier)
			require.NoError(t, err)
			assert.NotEqual(t, idLater, idEarlier)

			got, err := s.Get(ctx, idEarlier)
			require.NoError(t, err)
			assert.Equal(t, "alice", got.Author)
			assert.JSONEq(t, transformJSON, string(got.Transform))

			_, err = s.Get(ctx, "nope")
			assert.ErrorIs(t, err, ErrNotFound)

			metas, err = s.List(ctx)
			require.NoError(t, err)
			require.Len(t, metas, 2)
			assert.Equal(t, idEarlier, metas[0].ID)
			assert.Equal(t, idLater, metas[1].ID)

			got, err = Lookup(ctx, s, idLater[:10])
			require.NoError(t, err)
			assert.Equal(t, "bob", got.Author)

			_, err = Lookup(ctx, s, "zz")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = Lookup(ctx, s, "")
			assert.ErrorIs(t, err, ErrAmbiguous)
		})
	}
}

func TestS3_Keys(t *testing.T) {
	mem := newMemS3()
	s := NewS3(mem, "bucket", "team/")
	id, err := s.Put(context.Background(), record("alice", time.Now()))
	require.NoError(t, err)
	assert.Contains(t, mem.objects, "team/"+id+".json")

	mem.objects["team/README"] = []byte("not a record")
	mem.objects["team/bad.json"] = []byte("{")
	mem.objects["other/x.json"] = mem.objects["team/"+id+".json"]

	metas, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, metas, 1)
}

func TestLocal_Disabled(t *testing.T) {
	t.Setenv(cacheutil.EnvDir, t.TempDir())
	t.Setenv(cacheutil.EnvEnabled, "0")
	_, err := NewLocal()
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	useCache(t)
	cfg := filepath.Join(t.TempDir(), config.FileName)
	t.Setenv(config.EnvFile, cfg)
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	tests := []struct {
		name    string
		yaml    string
		kind    string
		want    any
		wantErr bool
	}{
		{name: "default local", yaml: "a: 1\n", want: &Local{}},
		{name: "explicit local", yaml: "store:\n  kind: s3\n", kind: "local", want: &Local{}},
		{name: "s3 without bucket", yaml: "store:\n  kind: s3\n", wantErr: true},
		{name: "unknown", yaml: "a: 1\n", kind: "ftp", wantErr: true},
		{
			name: "s3",
			yaml: "store:\n  kind: s3\n  bucket: revs\n  region: us-east-1\n  endpoint: http://localhost:9000\n",
			want: &S3{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(cfg, []byte(tt.yaml), 0o600))
			config.Config = config.Type{}
			t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
			t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
			t.Setenv("AWS_PROFILE", "")

			s, err := New(context.Background(), tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestPurgeLocal(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		removed bool
	}{
		{"unset", "a: 1\n", false},
		{"expired", "cache:\n  clean: 1\n", true},
		{"retained", "cache:\n  clean: 100\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCache(t)
			cfg := filepath.Join(t.TempDir(), config.FileName)
			require.NoError(t, os.WriteFile(cfg, []byte(tt.yaml), 0o600))
			t.Setenv(config.EnvFile, cfg)
			config.Config = config.Type{}
			t.Cleanup(func() { config.Config = config.Type{} })

			l, err := NewLocal()
			require.NoError(t, err)
			id, err := l.Put(context.Background(), record("alice", time.Now()))
			require.NoError(t, err)
			path, exists := cacheutil.EntryPath(subdirs, id)
			require.True(t, exists)
			old := time.Now().Add(-3 * time.Hour)
			require.NoError(t, os.Chtimes(path, old, old))

			require.NoError(t, PurgeLocal())
			if tt.removed {
				assert.NoFileExists(t, path)
			} else {
				assert.FileExists(t, path)
			}
		})
	}
}
