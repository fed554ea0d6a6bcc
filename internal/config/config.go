// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/staranto/redline/internal/log"
)

// FileName is the config file looked up in the user config directory.
const FileName = "redline.yaml"

// EnvFile names an explicit config file.
const EnvFile = "REDLINE_CFG_FILE"

// Type is the in-memory representation of the loaded configuration.
//
// Fields:
//   - Source: absolute path of the YAML file loaded.
//   - Namespace: optional dot-prefixed keyspace tried before the bare key
//     (e.g. namespace "store.s3" turns "bucket" into "store.s3.bucket").
//   - Data: raw key/value tree unmarshaled from YAML.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config holds the global, lazily-initialized configuration instance.
var Config Type

// ErrNotFound is returned by getters for a missing key without a default.
var ErrNotFound = errors.New("config key not found")

// lookup finds key, trying the namespaced key first.
func lookup(key string) (any, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}
	return Config.get(key)
}

// typed looks key up and converts it with conv. A missing key yields the
// single default when one is given.
func typed[T any](key string, kind string, defaults []T, conv func(any) (T, bool)) (T, error) {
	var zero T
	val, err := lookup(key)
	if err != nil {
		if len(defaults) == 1 {
			return defaults[0], nil
		}
		return zero, err
	}
	v, ok := conv(val)
	if !ok {
		return zero, fmt.Errorf("%s: value is not %s", key, kind)
	}
	return v, nil
}

// GetString returns the string at a dotted key path.
func GetString(key string, defaultValue ...string) (string, error) {
	return typed(key, "a string", defaultValue, func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}

// GetInt returns the integer at a dotted key path. YAML numbers may decode
// as int, int64 or float64.
func GetInt(key string, defaultValue ...int) (int, error) {
	return typed(key, "an int", defaultValue, func(v any) (int, bool) {
		switch n := v.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			return int(n), true
		}
		return 0, false
	})
}

// GetBool returns the boolean at a dotted key path. Strings accepted by
// strconv.ParseBool are converted.
func GetBool(key string, defaultValue ...bool) (bool, error) {
	return typed(key, "a bool", defaultValue, func(v any) (bool, bool) {
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			parsed, err := strconv.ParseBool(b)
			return parsed, err == nil
		}
		return false, false
	})
}

// GetDuration returns the duration at a dotted key path. A bare number is
// taken as hours, anything else must parse with time.ParseDuration.
func GetDuration(key string, defaultValue ...time.Duration) (time.Duration, error) {
	return typed(key, "a duration", defaultValue, func(v any) (time.Duration, bool) {
		switch d := v.(type) {
		case int:
			return time.Duration(d) * time.Hour, true
		case float64:
			return time.Duration(d * float64(time.Hour)), true
		case string:
			parsed, err := time.ParseDuration(d)
			return parsed, err == nil
		}
		return 0, false
	})
}

// GetStringSlice returns the string list at a dotted key path.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	return typed(key, "a string list", defaultValue, func(v any) ([]string, bool) {
		switch l := v.(type) {
		case []string:
			return l, true
		case []any:
			out := make([]string, len(l))
			for i, item := range l {
				s, ok := item.(string)
				if !ok {
					return nil, false
				}
				out[i] = s
			}
			return out, true
		}
		return nil, false
	})
}

// Load reads the YAML configuration file and populates the global Config.
// An explicit path overrides the usual lookup.
func Load(cfgFilePath ...string) (Type, error) {
	var path string
	if len(cfgFilePath) > 0 && cfgFilePath[0] != "" {
		path = cfgFilePath[0]
	} else {
		var err error
		if path, err = getConfigFile(); err != nil {
			return Type{}, err
		}
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	Config = Type{Source: path, Namespace: Config.Namespace, Data: data}
	return Config, nil
}

// get traverses the configuration tree along a dotted key path, trying the
// namespaced key first when Namespace is set.
func (cfg *Type) get(kspec string) (any, error) {
	var candidates []string
	if cfg.Namespace != "" {
		candidates = append(candidates, cfg.Namespace+"."+kspec)
	}
	candidates = append(candidates, kspec)

	for _, key := range candidates {
		var current interface{} = cfg.Data
		found := true
		for _, part := range strings.Split(key, ".") {
			m, ok := current.(map[string]interface{})
			if !ok {
				found = false
				break
			}
			if current, ok = m[part]; !ok {
				found = false
				break
			}
		}
		if found {
			return current, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(candidates, ", "))
}

// getConfigFile returns the config file path from REDLINE_CFG_FILE or the
// user config directory. The file must exist and not be a directory.
func getConfigFile() (string, error) {
	if cfgPath := os.Getenv(EnvFile); cfgPath != "" {
		info, err := os.Stat(cfgPath)
		if err != nil {
			return "", fmt.Errorf("config file not found at %s path: %s", EnvFile, cfgPath)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s points to a directory: %s", EnvFile, cfgPath)
		}
		log.Debugf("using config file from %s: %s", EnvFile, cfgPath)
		return cfgPath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	file := filepath.Join(dir, FileName)
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		log.Debugf("using config file: %s", file)
		return file, nil
	}

	return "", fmt.Errorf("no config file found in standard locations")
}
