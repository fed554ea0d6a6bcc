// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// NewGlobalFlags returns the output flags shared by every dataset command.
// Values come from the flag, REDLINE_<NAME>, then the ns.<name> and
// output.<name> keys of the config file at path.
func NewGlobalFlags(ns string, path string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: sources(path, "attrs", ns+".attrs"),
		},
		&cli.StringFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "color text output (auto, always, never)",
			Value:   "auto",
			Sources: sources(path, "color", ns+".color", "output.color"),
			Validator: func(value string) error {
				return FlagValidators(value, ColorValidator)
			},
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:        "keys",
			Usage:       "list the attribute keys of the results",
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Value:   "text",
			Sources: sources(path, "output", ns+".output", "output.format"),
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:    "padding",
			Usage:   "cell padding for text output",
			Value:   1,
			Sources: sources(path, "padding", "output.padding"),
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: sources(path, "sort", ns+".sort"),
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: sources(path, "titles", "output.titles"),
		},
	}

	return
}

// NewDiffFlags returns the flags that shape a document diff, sourced from
// the diff.* config keys.
func NewDiffFlags(path string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "annotate",
			Usage:   "mark removed and inserted content instead of editing it away",
			Sources: sources(path, "annotate", "diff.annotate"),
		},
		&cli.StringFlag{
			Name:    "granularity",
			Aliases: []string{"g"},
			Usage:   "unit of text changes (word, char)",
			Value:   "word",
			Sources: sources(path, "granularity", "diff.granularity"),
			Validator: func(value string) error {
				return FlagValidators(value, GranularityValidator)
			},
		},
		&cli.IntFlag{
			Name:    "max-size",
			Usage:   "largest accepted document size in positions, -1 for no limit",
			Sources: sources(path, "max-size", "diff.max_size"),
		},
		&cli.BoolFlag{
			Name:    "separate-marks",
			Usage:   "diff content and marks in separate passes",
			Sources: sources(path, "separate-marks", "diff.separate_marks"),
		},
		&cli.BoolFlag{
			Name:    "simplify",
			Usage:   "fold adjacent steps of the result",
			Sources: sources(path, "simplify", "diff.simplify"),
		},
	}
}

// NewSelectFlag constructs the --select flag, a path that pulls the document
// out of a wrapping JSON value. Segments may carry an [n] index.
func NewSelectFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "select",
		Usage: "path of the document inside each input, e.g. revisions[1].doc",
	}
}

// NewStoreFlag constructs the --store flag. Left empty, the store.kind config
// key decides.
func NewStoreFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "store",
		Usage:   "record store (local, s3)",
		Sources: cli.EnvVars("REDLINE_STORE"),
		Validator: func(value string) error {
			return FlagValidators(value, StoreValidator)
		},
	}
}

// sources chains REDLINE_<NAME> and the given config file keys. Dashes in
// the flag name become underscores in the env var.
func sources(path string, name string, keys ...string) cli.ValueSourceChain {
	env := "REDLINE_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	chain := cli.NewValueSourceChain(cli.EnvVar(env))
	if path == "" {
		return chain
	}
	for _, k := range keys {
		src := yaml.YAML(k, altsrc.StringSourcer(path))
		chain.Chain = append(chain.Chain, src)
	}
	return chain
}
