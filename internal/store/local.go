// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/staranto/redline/internal/cacheutil"
	"github.com/staranto/redline/internal/config"
	"github.com/staranto/redline/internal/log"
)

var subdirs = []string{"records"}

// Local keeps records as files beneath the cache directory.
type Local struct{}

var _ Store = (*Local)(nil)

// NewLocal fails when the cache directory is disabled or cannot be
// resolved.
func NewLocal() (*Local, error) {
	_, ok, err := cacheutil.EnsureBaseDir()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("local store needs the cache directory; check " + cacheutil.EnvEnabled)
	}
	return &Local{}, nil
}

// PurgeLocal removes local records older than cache.clean, given in hours
// or as a duration string. Zero or unset keeps everything.
func PurgeLocal() error {
	maxAge, err := config.GetDuration("cache.clean", 0)
	if err != nil {
		return err
	}
	return cacheutil.Purge(maxAge, subdirs...)
}

func (l *Local) Put(_ context.Context, r *Record) (string, error) {
	if err := Seal(r); err != nil {
		return "", err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	if err := cacheutil.Write(subdirs, r.ID, data); err != nil {
		return "", err
	}
	log.WithField("id", r.ID).WithField("kind", r.Kind).Debug("local store put")
	return r.ID, nil
}

func (l *Local) Get(_ context.Context, id string) (*Record, error) {
	e, ok := cacheutil.Read(subdirs, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return decode(e.Data)
}

func (l *Local) List(_ context.Context) ([]Meta, error) {
	entries, err := cacheutil.List(subdirs)
	if err != nil {
		return nil, err
	}
	metas := make([]Meta, 0, len(entries))
	for _, e := range entries {
		r, err := decode(e.Data)
		if err != nil {
			log.WithError(err).Warnf("skipping %s", e.Path)
			continue
		}
		metas = append(metas, MetaOf(r))
	}
	sort.SliceStable(metas, func(i, j int) bool { return metas[i].CreatedAt.Before(metas[j].CreatedAt) })
	return metas, nil
}
