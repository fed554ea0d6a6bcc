// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for redline's user
// configuration. The configuration is a YAML document named by
// REDLINE_CFG_FILE or, failing that, redline.yaml in the user's configuration
// directory:
//   - Linux: $XDG_CONFIG_HOME/redline.yaml or $HOME/.config/redline.yaml
//   - macOS: $HOME/Library/Application Support/redline.yaml
//   - Windows: %APPDATA%/redline.yaml
//
// Keys are dotted paths such as "diff.granularity" or "store.s3.bucket".
package config
