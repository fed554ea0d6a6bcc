// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws builds AWS SDK v2 configuration and the S3 client used by the
// s3 record store. Besides the shell's credential chain it supports custom
// endpoints (MinIO, LocalStack) and path-style addressing.
package aws
