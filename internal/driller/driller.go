// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var segmentRe = regexp.MustCompile(`^([^\[\]]+)(\[(\d+|\*)?\])?$`)

// Drill returns the value at path in data. A path without brackets is a
// plain gjson path. Otherwise each dot separated segment is a key with an
// optional index: key[n] selects element n of the array at key, and key[]
// or key[*] keeps the whole array.
func Drill(data []byte, path string) gjson.Result {
	if !strings.Contains(path, "[") {
		return gjson.GetBytes(data, path)
	}

	current := gjson.ParseBytes(data)
	for _, p := range strings.Split(path, ".") {
		m := segmentRe.FindStringSubmatch(p)
		if m == nil {
			return gjson.Result{}
		}

		val := current.Get(m[1])
		if m[3] != "" && m[3] != "*" {
			i, err := strconv.Atoi(m[3])
			if err != nil || !val.IsArray() {
				return gjson.Result{}
			}
			arr := val.Array()
			if i >= len(arr) {
				return gjson.Result{}
			}
			val = arr[i]
		}
		if !val.Exists() {
			return gjson.Result{}
		}
		current = val
	}

	return current
}
