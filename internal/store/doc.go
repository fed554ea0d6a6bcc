// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package store persists revisions and merge results as JSON records. A
// record's id is the blake2b digest of its body, so identical records share
// an id. Two backends exist: Local keeps records in the user cache directory
// and S3 keeps them as objects under a bucket prefix.
package store
