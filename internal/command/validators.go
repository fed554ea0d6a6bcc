// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"slices"

	"github.com/staranto/redline/internal/textdiff"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(value any, valid ...string) error {
	s, _ := value.(string)
	if !slices.Contains(valid, s) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}

func OutputValidator(value any) error {
	return oneOf(value, "text", "json", "raw", "yaml")
}

func ColorValidator(value any) error {
	return oneOf(value, "auto", "always", "never")
}

// StoreValidator accepts an empty value, which defers to config.
func StoreValidator(value any) error {
	return oneOf(value, "", "local", "s3")
}

func GranularityValidator(value any) error {
	s, _ := value.(string)
	_, err := textdiff.ParseGranularity(s)
	return err
}
