// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/meta"
)

const bashCompletionScript = `# bash completion for redline
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_redline()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "capture diff list merge record show simplify completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --keys --output -o --padding --sort -s --titles -t"
    local difflags="--annotate --granularity -g --max-size --separate-marks --simplify"

    case "$cmd" in
        capture)
            local opts="$common --select"
            ;;
        diff)
            local opts="$common $difflags --pick --select --store --structural"
            ;;
        list)
            local opts="$common --store"
            ;;
        merge)
            local opts="$common --author --conflicts --records --resolve --save --select --stop-on-conflict --store"
            ;;
        record)
            local opts="$common $difflags --select --store"
            ;;
        show)
            local opts="$common --store"
            ;;
        simplify)
            local opts="$common"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --color|-c)
            COMPREPLY=( $(compgen -W "auto always never" -- "$cur") )
            return 0
            ;;
        --granularity|-g)
            COMPREPLY=( $(compgen -W "word char" -- "$cur") )
            return 0
            ;;
        --store)
            COMPREPLY=( $(compgen -W "local s3" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Positional arguments are JSON files.
    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _redline redline
`

const zshCompletionScript = `#compdef redline

_redline() {
  local -a cmds
  cmds=(
    'capture:collect a stream of editor changes into compact steps'
    'diff:compute the steps between two documents'
    'list:list stored records'
    'merge:merge revisions of a base document'
    'record:store the revision from BASE to TO'
    'show:show a stored record'
    'simplify:fold adjacent steps of a transform'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
    '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
    '(-c --color)'{-c,--color}'[color text output]:mode:(auto always never)'
    '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
    '--keys[list attribute keys]'
    '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
    '--padding[cell padding]:padding'
    '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
    '(-t --titles)'{-t,--titles}'[show titles]'
  )

  local -a difflags
  difflags=(
    '--annotate[mark changes instead of editing]'
    '(-g --granularity)'{-g,--granularity}'[unit of text changes]:unit:(word char)'
    '--max-size[largest document size]:size'
    '--separate-marks[diff marks separately]'
    '--simplify[fold adjacent steps]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'redline commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    capture)
      _arguments -C $common '--select[gjson path of the document]:path' '*:file:_files'
      ;;
    diff)
      _arguments -C $common $difflags \
        '--pick[pick from the record store]' \
        '--select[gjson path of the document]:path' \
        '--store[record store]:store:(local s3)' \
        '--structural[JSON level difference]' \
        '*:file:_files'
      ;;
    list|show)
      _arguments -C $common '--store[record store]:store:(local s3)' '*:id'
      ;;
    merge)
      _arguments -C $common \
        '--author[author of a saved merge]:author' \
        '--conflicts[list conflicts]' \
        '--records[revisions are record ids]' \
        '*--resolve[resolved document]:resolution' \
        '--save[save the merge]' \
        '--select[gjson path of the document]:path' \
        '--stop-on-conflict[stop at the first conflict]' \
        '--store[record store]:store:(local s3)' \
        '*:file:_files'
      ;;
    record)
      _arguments -C $common $difflags \
        '--select[gjson path of the document]:path' \
        '--store[record store]:store:(local s3)' \
        '1:author' '*:file:_files'
      ;;
    simplify)
      _arguments -C $common '1:transform:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:file:_files'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _redline redline
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer
	shell := cmd.Args().First()
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		fmt.Fprintln(cmd.Root().ErrWriter, "usage: redline completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "redline completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
