// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/staranto/redline/internal/cacheutil"
	"github.com/staranto/redline/internal/command"
	"github.com/staranto/redline/internal/config"
	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/store"
	"github.com/staranto/redline/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string, w io.Writer) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Fprintln(w, version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		// Short-circuit completion: pass args directly.
		return args
	}
	args = command.StdinArgs(processSetOnly(args))
	log.Debugf("args after set processing: args=%v", args)
	return args
}

// processSetOnly expands an @set argument into the <command>.<set> list of
// the config file, at the position of the @set. Each list entry may hold
// several whitespace separated args.
func processSetOnly(args []string) []string {
	if len(args) < 3 {
		return args
	}
	idx := slices.IndexFunc(args[2:], func(a string) bool {
		return strings.HasPrefix(a, "@")
	})
	if idx < 0 {
		return args
	}
	idx += 2
	set := args[idx][1:]

	setArgs, err := config.GetStringSlice(args[1] + "." + set)
	if err != nil {
		log.Debugf("no %s.%s set: %v", args[1], set, err)
	}
	var expanded []string
	for _, arg := range setArgs {
		expanded = append(expanded, strings.Fields(arg)...)
	}

	out := make([]string, 0, len(args)-1+len(expanded))
	out = append(out, args[:idx]...)
	out = append(out, expanded...)
	return append(out, args[idx+1:]...)
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	// Pre-create cache directory when caching is enabled and drop expired
	// local records.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("cache ensure err: err=%v", err)
	} else if ok {
		if err := store.PurgeLocal(); err != nil {
			log.Debugf("cache purge err: err=%v", err)
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args, os.Stdout) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI
	// handle it.
	if !slices.ContainsFunc(args, func(a string) bool { return a == "--help" || a == "-h" }) {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}
