// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Command docsgen writes the markdown and tldr pages for every redline
// command. Flags and usage come from the live command tree; examples and notes
// come from <docs>/templates/examples.yaml.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/staranto/redline/internal/command"
)

type Extras struct {
	Commands map[string]Extra `yaml:"commands"`
}

type Extra struct {
	Description string    `yaml:"description"`
	Examples    []Example `yaml:"examples"`
	Notes       []string  `yaml:"notes,omitempty"`
}

type Example struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

type Flag struct {
	Names   string
	Usage   string
	Default string
	Env     string
}

type TemplateData struct {
	Extra
	ID      string
	Short   string
	Usage   string
	Flags   []Flag
	Date    string
	Version string
}

type Output struct {
	Template string
	Folder   string
	Prefix   string
	Suffix   string
}

const mdTemplate = `# redline {{.ID}}

{{.Short}}

## Usage

` + "```" + `
{{.Usage}}
` + "```" + `
{{if .Description}}
{{.Description}}
{{end}}
## Flags

| Flag | Default | Env | Description |
|------|---------|-----|-------------|
{{range .Flags}}| ` + "`{{.Names}}`" + ` | {{.Default}} | {{.Env}} | {{.Usage}} |
{{end}}{{if .Examples}}
## Examples
{{range .Examples}}
{{.Description}}

` + "```" + `
{{.Command}}
` + "```" + `
{{end}}{{end}}{{if .Notes}}
## Notes
{{range .Notes}}
- {{.}}{{end}}
{{end}}
---
redline {{.Version}}, {{.Date}}
`

const tldrTemplate = `# redline {{.ID}}

> {{.Short}}
{{range .Examples}}
- {{.Description}}:

` + "`{{.Command}}`" + `
{{end}}`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen DOCS_DIR")
		os.Exit(1)
	}
	docs := os.Args[1]

	app, err := command.InitApp(context.Background(), []string{"redline"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	written, err := generate(docs, app, getVersion(), time.Now())
	for _, w := range written {
		fmt.Println("Generated", w)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// generate renders every visible command of app under docs and returns the
// files it wrote.
func generate(docs string, app *cli.Command, version string, now time.Time) ([]string, error) {
	extras, err := loadExtras(filepath.Join(docs, "templates", "examples.yaml"))
	if err != nil {
		return nil, err
	}

	outputs := []Output{
		{Template: mdTemplate, Folder: filepath.Join(docs, "commands"), Suffix: ".md"},
		{Template: tldrTemplate, Folder: filepath.Join(docs, "tldr"), Prefix: "redline-", Suffix: ".md"},
	}

	var written []string
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}
		data := TemplateData{
			Extra:   extras.Commands[cmd.Name],
			ID:      cmd.Name,
			Short:   cmd.Usage,
			Usage:   cmd.UsageText,
			Flags:   flags(cmd),
			Date:    now.Format("January 2, 2006"),
			Version: version,
		}
		if data.Usage == "" {
			data.Usage = "redline " + cmd.Name
		}

		for _, o := range outputs {
			if err := os.MkdirAll(o.Folder, 0o755); err != nil {
				return written, err
			}
			path := filepath.Join(o.Folder, o.Prefix+cmd.Name+o.Suffix)
			if err := render(path, o.Template, data); err != nil {
				return written, fmt.Errorf("%s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func render(path string, text string, data TemplateData) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(text)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// loadExtras reads the hand-written examples. A missing file yields none.
func loadExtras(path string) (Extras, error) {
	var extras Extras
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return extras, nil
	} else if err != nil {
		return extras, err
	}
	if err := yaml.Unmarshal(data, &extras); err != nil {
		return extras, fmt.Errorf("%s: %w", path, err)
	}
	return extras, nil
}

func flags(cmd *cli.Command) []Flag {
	var out []Flag
	for _, f := range cmd.Flags {
		names := make([]string, 0, len(f.Names()))
		for _, n := range f.Names() {
			if len(n) == 1 {
				names = append(names, "-"+n)
			} else {
				names = append(names, "--"+n)
			}
		}
		fl := Flag{Names: strings.Join(names, ", ")}
		if d, ok := f.(cli.DocGenerationFlag); ok {
			fl.Usage = d.GetUsage()
			if d.TakesValue() {
				fl.Default = d.GetValue()
			}
			fl.Env = strings.Join(d.GetEnvVars(), ", ")
		}
		out = append(out, fl)
	}
	return out
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}

	version := strings.TrimSpace(string(out))
	return strings.TrimPrefix(version, "v")
}
