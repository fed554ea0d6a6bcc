// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/staranto/redline/internal/log"
)

// Attr is one output column.
type Attr struct {
	// Key is the gjson path of the value within a row.
	Key string `yaml:"key" json:"Key"`
	// Include is false for columns kept only for filtering and sorting.
	Include bool `yaml:"include" json:"Include"`
	// OutputKey names the column in output.
	OutputKey string `yaml:"outputKey" json:"OutputKey"`
	// TransformSpec is applied to string values before output.
	TransformSpec string `yaml:"transformSpec" json:"TransformSpec"`
}

var lengthRe = regexp.MustCompile(`-?\d+`)

// now is swapped in tests.
var now = time.Now

// Transform applies the attr's transform spec to a string value. Other
// values pass through.
func (a *Attr) Transform(value any) any {
	result, ok := value.(string)
	if !ok || a.TransformSpec == "" {
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "tT") {
		if t, err := time.Parse(time.RFC3339, result); err == nil {
			if strings.Contains(a.TransformSpec, "T") {
				result = humanize.RelTime(t, now(), "ago", "from now")
			} else {
				result = t.In(time.Local).Format("2006-01-02T15:04:05MST")
			}
			log.Tracef("time transform: spec=%s result=%s", a.TransformSpec, result)
		}
	}

	// The last case letter wins so an attr's own spec overrides a global one.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	switch {
	case lastL > lastU:
		result = strings.ToLower(result)
	case lastU > lastL:
		result = strings.ToUpper(result)
	}

	if m := lengthRe.FindAllString(a.TransformSpec, -1); len(m) > 0 {
		n, _ := strconv.Atoi(m[len(m)-1])
		result = clip(result, n)
	}
	return result
}

// clip shortens s to n runes, or to |n| runes around ".." when n is
// negative.
func clip(s string, n int) string {
	r := []rune(s)
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if len(r) <= abs {
		return s
	}
	if n >= 0 {
		return string(r[:n])
	}
	side := abs/2 - 1
	if side < 1 {
		return string(r[:abs])
	}
	return string(r[:side]) + ".." + string(r[len(r)-side:])
}

// AttrList is the set of columns for a table.
type AttrList []Attr

// Set parses value and merges it into the list. A spec naming an existing
// key or output key updates that attr in place.
func (a *AttrList) Set(value string) error {
	if value == "" {
		return nil
	}

specs:
	for _, spec := range strings.Split(value, ",") {
		fields := strings.Split(spec, ":")
		if len(fields) > 3 {
			return fmt.Errorf("invalid attr spec %q", spec)
		}

		attr := Attr{Include: true, Key: strings.TrimSpace(fields[0])}
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec %q: empty key", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		segments := strings.Split(attr.Key, ".")
		attr.OutputKey = segments[len(segments)-1]
		if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
			attr.OutputKey = strings.TrimSpace(fields[1])
		}
		if len(fields) > 2 {
			attr.TransformSpec = strings.TrimSpace(fields[2])
		}
		log.Tracef("attr parsed: %+v", attr)

		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specs
			}
		}
		*a = append(*a, attr)
	}
	return nil
}

// SetGlobalTransformSpec prepends the transform of the first * attr to
// every attr's spec.
func (a *AttrList) SetGlobalTransformSpec() {
	spec := ""
	for _, attr := range *a {
		if attr.Key == "*" {
			spec = attr.TransformSpec
			break
		}
	}
	if spec == "" {
		return
	}
	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
	log.Debugf("global transform prepended: spec=%s", spec)
}

// Included returns the visible columns.
func (a AttrList) Included() AttrList {
	var out AttrList
	for _, attr := range a {
		if attr.Include {
			out = append(out, attr)
		}
	}
	return out
}

// String renders the list in --attrs form.
func (a AttrList) String() string {
	parts := make([]string, 0, len(a))
	for _, attr := range a {
		key := attr.Key
		if !attr.Include && key != "*" {
			key = "!" + key
		}
		parts = append(parts, fmt.Sprintf("%s:%s:%s", key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(parts, ",")
}
