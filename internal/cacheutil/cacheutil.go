// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/staranto/redline/internal/log"
)

const (
	EnvDir     = "REDLINE_CACHE_DIR"
	EnvEnabled = "REDLINE_CACHE"

	tmpPrefix = ".tmp-"
)

// Entry is one stored file. Key is the clear-text key, EncodedKey the file
// name derived from it. Entries returned by List carry no Key.
type Entry struct {
	Key        string
	EncodedKey string
	Path       string
	Data       []byte
	ModTime    time.Time
}

// Dir resolves the base directory: REDLINE_CACHE_DIR when set and non-empty,
// else <UserCacheDir>/redline. It reports false when neither resolves.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv(EnvDir); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "redline"), true
	}
	return "", false
}

// Enabled is false only when REDLINE_CACHE is "0" or "false".
func Enabled() bool {
	v := os.Getenv(EnvEnabled)
	return v != "0" && v != "false"
}

// EnsureBaseDir creates the base directory. The bool reports whether the
// directory is usable.
func EnsureBaseDir() (string, bool, error) {
	base, ok := root()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	log.Debugf("cache dir: path=%s", base)
	return base, true, nil
}

// EntryPath is where the entry for clearKey beneath subdirs lives, and
// whether it exists.
func EntryPath(subdirs []string, clearKey string) (string, bool) {
	dir, ok := root(subdirs...)
	if !ok {
		return "", false
	}
	p := filepath.Join(dir, encodeKey(clearKey))
	_, err := os.Stat(p)
	return p, err == nil
}

// Purge removes entries beneath subdirs (the whole cache when none are given)
// not modified within maxAge. maxAge <= 0 keeps everything.
func Purge(maxAge time.Duration, subdirs ...string) error {
	if maxAge <= 0 {
		log.Debugf("cache cleaning disabled: max age %s", maxAge)
		return nil
	}
	dir, ok := root(subdirs...)
	if !ok {
		return nil
	}

	cutoff := time.Now().Add(-maxAge)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Gone already, or never created.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
			return nil
		}
		log.Debugf("purged %s", path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// Read returns the entry for clearKey, with surrounding whitespace trimmed
// from its data.
func Read(subdirs []string, clearKey string) (*Entry, bool) {
	p, ok := EntryPath(subdirs, clearKey)
	if !ok {
		return nil, false
	}
	e, err := load(p)
	if err != nil {
		log.WithError(err).Warnf("unreadable cache file %s", p)
		return nil, false
	}
	e.Key = clearKey
	log.Debugf("cache hit: key=%s", clearKey)
	return e, true
}

// Write stores data under clearKey. The file is written beside its final
// name and renamed into place, so readers never see a partial entry. A
// disabled cache drops the write.
func Write(subdirs []string, clearKey string, data []byte) error {
	dir, ok := root(subdirs...)
	if !ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	p := filepath.Join(dir, encodeKey(clearKey))
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Debugf("cache write: key=%s", clearKey)
	return nil
}

// List returns the entries directly beneath subdirs, oldest first. A missing
// directory lists nothing.
func List(subdirs []string) ([]*Entry, error) {
	dir, ok := root(subdirs...)
	if !ok {
		return nil, nil
	}
	des, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}

	entries := make([]*Entry, 0, len(des))
	for _, de := range des {
		if de.IsDir() || strings.HasPrefix(de.Name(), tmpPrefix) {
			continue
		}
		e, err := load(filepath.Join(dir, de.Name()))
		if err != nil {
			log.WithError(err).Warnf("skipping unreadable cache file %s", de.Name())
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ModTime.Before(entries[j].ModTime) })

	log.Debugf("cache list: dir=%s entries=%d", dir, len(entries))
	return entries, nil
}

// root joins subdirs onto the base directory. It reports false when the
// cache is disabled or has no base.
func root(subdirs ...string) (string, bool) {
	if !Enabled() {
		return "", false
	}
	base, ok := Dir()
	if !ok {
		return "", false
	}
	return filepath.Join(append([]string{base}, subdirs...)...), true
}

func load(path string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Entry{
		EncodedKey: filepath.Base(path),
		Path:       path,
		Data:       bytes.TrimSpace(b),
		ModTime:    info.ModTime(),
	}, nil
}

// encodeKey returns the hex blake2b-256 digest of input.
func encodeKey(input string) string {
	sum := blake2b.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
