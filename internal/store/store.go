// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/blake2b"

	"github.com/staranto/redline/internal/aws"
	"github.com/staranto/redline/internal/config"
	"github.com/staranto/redline/internal/log"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrAmbiguous = errors.New("record id prefix is ambiguous")
)

// Kind says what a record holds.
type Kind string

const (
	// KindRevision is one author's transform against a base.
	KindRevision Kind = "revision"
	// KindMerge is a merged transform and its resulting document.
	KindMerge Kind = "merge"
)

// Record is a stored revision or merge. Transform is the JSON of a
// transform.Transform and Result the JSON of the document it produced.
type Record struct {
	ID        string          `json:"id,omitempty"`
	Kind      Kind            `json:"kind"`
	Author    string          `json:"author,omitempty"`
	BaseHash  string          `json:"base"`
	CreatedAt time.Time       `json:"created_at"`
	Transform json.RawMessage `json:"transform,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// Meta is the listing form of a record.
type Meta struct {
	ID        string    `json:"id" yaml:"id"`
	Kind      Kind      `json:"kind" yaml:"kind"`
	Author    string    `json:"author,omitempty" yaml:"author,omitempty"`
	BaseHash  string    `json:"base" yaml:"base"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Steps     int       `json:"steps" yaml:"steps"`
}

// Store persists records.
type Store interface {
	// Put stores r and returns its id.
	Put(ctx context.Context, r *Record) (string, error)
	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns every record's metadata, oldest first.
	List(ctx context.Context) ([]Meta, error)
}

// Seal stamps r with a creation time, if it has none, and its id.
func Seal(r *Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	id, err := ID(r)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// ID is the hex blake2b-256 digest of r's JSON body without its id.
func ID(r *Record) (string, error) {
	body := *r
	body.ID = ""
	data, err := json.Marshal(&body)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// MetaOf summarizes r.
func MetaOf(r *Record) Meta {
	return Meta{
		ID:        r.ID,
		Kind:      r.Kind,
		Author:    r.Author,
		BaseHash:  r.BaseHash,
		CreatedAt: r.CreatedAt,
		Steps:     int(gjson.GetBytes(r.Transform, "steps.#").Int()),
	}
}

// decode parses a stored record and checks its id against its body.
func decode(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	id, err := ID(&r)
	if err != nil {
		return nil, err
	}
	if r.ID != id {
		return nil, fmt.Errorf("record %s: body digest is %s", r.ID, id)
	}
	return &r, nil
}

// Lookup resolves a full id or a unique id prefix to a record.
func Lookup(ctx context.Context, s Store, prefix string) (*Record, error) {
	r, err := s.Get(ctx, prefix)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	metas, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var match string
	for _, m := range metas {
		if !strings.HasPrefix(m.ID, prefix) {
			continue
		}
		if match != "" && match != m.ID {
			return nil, fmt.Errorf("%s: %w", prefix, ErrAmbiguous)
		}
		match = m.ID
	}
	if match == "" {
		return nil, fmt.Errorf("%s: %w", prefix, ErrNotFound)
	}
	return s.Get(ctx, match)
}

// New returns the store named by kind, or by the store.kind config key when
// kind is empty. The s3 store reads store.bucket, store.prefix,
// store.region, store.profile, store.endpoint and store.path_style.
func New(ctx context.Context, kind string) (Store, error) {
	if kind == "" {
		kind, _ = config.GetString("store.kind", "local")
	}
	log.Debugf("store kind: %s", kind)

	switch kind {
	case "local":
		return NewLocal()
	case "s3":
		bucket, err := config.GetString("store.bucket")
		if err != nil {
			return nil, fmt.Errorf("s3 store needs store.bucket: %w", err)
		}
		prefix, _ := config.GetString("store.prefix", "")
		region, _ := config.GetString("store.region", "")
		profile, _ := config.GetString("store.profile", "")
		endpoint, _ := config.GetString("store.endpoint", "")
		pathStyle, _ := config.GetBool("store.path_style", endpoint != "")

		client, err := aws.NewS3(ctx,
			aws.WithRegion(region),
			aws.WithProfile(profile),
			aws.WithEndpoint(endpoint),
			aws.WithPathStyle(pathStyle),
		)
		if err != nil {
			return nil, fmt.Errorf("creating s3 client: %w", err)
		}
		return NewS3(client, bucket, prefix), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
