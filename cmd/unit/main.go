// unit runs Starlark test files against a shared environment and prints a
// grouped pass/fail report.
//
// Usage:
//
//	unit users.star orders.star
//	unit -manifest tests.yaml -env base_url=http://localhost:8080
//	unit -manifest tests.yaml -only orders.star -passing -log results.log
//
// Exit codes: 0 when every test passed, 1 when any test failed, 2 on usage
// errors or when a test file could not be loaded or run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/unit/internal/config"
	"github.com/dkoosis/unit/internal/manifest"
	"github.com/dkoosis/unit/internal/version"
	"github.com/dkoosis/unit/pkg/render"
	"github.com/dkoosis/unit/pkg/script"
	"github.com/dkoosis/unit/unit"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return runFs(afero.NewOsFs(), args, stdin, stdout, stderr)
}

// options holds parsed flags that are not part of the display config.
type options struct {
	manifest string
	only     string
	skip     string
	env      envFlag
	pager    bool
	version  bool
	files    []string
}

func runFs(fsys afero.Fs, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli, opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	tty := isTTYWriter(stdout)
	cfg, err := config.Resolve(fsys, cli, tty, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "unit: %v\n", err)
		return 2
	}

	entries, env, prefix, err := plan(fsys, opts)
	if err != nil {
		fmt.Fprintf(stderr, "unit: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintln(stderr, "unit: no test files (pass files as arguments or use -manifest)")
		return 2
	}
	if prefix != "" && cfg.Recorder.GroupPrefix == "" {
		cfg.Recorder.GroupPrefix = prefix
	}

	recOpts := []unit.Option{
		unit.WithOutput(stdout),
		unit.WithFs(fsys),
		unit.WithConfig(cfg.Recorder),
		unit.WithTheme(cfg.Theme()),
		unit.WithLoader(script.NewLoader(fsys)),
	}
	if cfg.Debug {
		recOpts = append(recOpts, unit.WithDebug(stderr))
	}
	r := unit.New(recOpts...)
	r.SetEnv(env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := r.RunTests(ctx, entries); err != nil {
		fmt.Fprintf(stderr, "unit: %v\n", err)
		return 2
	}

	report, logErr := r.Results()
	if opts.pager && tty {
		if err := render.Page(ctx, cfg.Theme(), report, stdin, stdout); err != nil {
			fmt.Fprintf(stderr, "unit: %v\n", err)
			fmt.Fprint(stdout, report)
		}
	} else {
		fmt.Fprint(stdout, report)
	}
	if logErr != nil {
		fmt.Fprintf(stderr, "unit: %v\n", logErr)
		return 2
	}
	if r.Failed() > 0 {
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (config.CliFlags, options, error) {
	var (
		cli  config.CliFlags
		opts options
	)
	fs := flag.NewFlagSet("unit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.manifest, "manifest", "", "YAML manifest listing test files and environment")
	fs.StringVar(&opts.only, "only", "", "Comma-separated test files to run exclusively")
	fs.StringVar(&opts.skip, "skip", "", "Comma-separated test files to skip")
	fs.Var(&opts.env, "env", "Environment value as key=value (repeatable)")
	fs.StringVar(&cli.LogFile, "log", "", "Append the report to this file")
	fs.BoolVar(&cli.Overwrite, "overwrite", false, "Overwrite the log file instead of appending")
	fs.BoolVar(&cli.Passing, "passing", false, "List passing tests in the report")
	fs.BoolVar(&cli.NoColor, "no-color", false, "Disable ANSI color output")
	fs.BoolVar(&cli.NoTotals, "no-totals", false, "Omit the totals line")
	fs.BoolVar(&cli.Quiet, "quiet", false, "Do not print the live PASS/FAIL stream")
	fs.BoolVar(&cli.NoContents, "no-contents", false, "Omit captured output from the report")
	fs.StringVar(&cli.GroupPrefix, "group-prefix", "", "Prefix joined to every group label")
	fs.StringVar(&cli.ThemeName, "theme", "", "Theme: default, orca, mono")
	fs.BoolVar(&opts.pager, "pager", false, "Show the report in a scrollable view when stdout is a terminal")
	fs.BoolVar(&cli.Debug, "debug", false, "Enable debug output")
	fs.BoolVar(&opts.version, "version", false, "Print unit version and exit")
	if err := fs.Parse(args); err != nil {
		return cli, opts, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log":
			cli.LogFileSet = true
		case "overwrite":
			cli.OverwriteSet = true
		case "passing":
			cli.PassingSet = true
		case "no-color":
			cli.NoColorSet = true
		case "no-totals":
			cli.NoTotalsSet = true
		case "quiet":
			cli.QuietSet = true
		case "no-contents":
			cli.NoContentsSet = true
		case "group-prefix":
			cli.GroupPrefixSet = true
		case "debug":
			cli.DebugSet = true
		}
	})
	opts.files = fs.Args()
	return cli, opts, nil
}

// plan builds the batch from the manifest, positional files and the
// -only/-skip lists. It also returns the merged environment and the
// manifest's group prefix.
//
// Names in -only and -skip match either the path as written in the
// manifest or the path after resolving it against the manifest directory.
func plan(fsys afero.Fs, opts options) ([]unit.Entry, unit.Env, string, error) {
	var (
		entries []unit.Entry
		names   []string
		env     = unit.Env{}
		prefix  string
	)
	if opts.manifest != "" {
		m, err := manifest.Load(fsys, opts.manifest)
		if err != nil {
			return nil, nil, "", err
		}
		if entries, err = m.Entries(); err != nil {
			return nil, nil, "", err
		}
		for _, t := range m.Tests {
			names = append(names, t.Path)
		}
		env = m.Environment()
		prefix = m.GroupPrefix
	}
	for _, path := range opts.files {
		entries = append(entries, unit.Entry{Path: path, Mode: unit.Run})
		names = append(names, path)
	}

	only, skip := splitList(opts.only), splitList(opts.skip)
	for i := range entries {
		raw, resolved := names[i], entries[i].Path
		switch {
		case only[raw] || only[resolved]:
			entries[i].Mode = unit.Only
			delete(only, raw)
			delete(only, resolved)
		case skip[raw] || skip[resolved]:
			entries[i].Mode = unit.Skip
		}
	}
	for _, path := range strings.Split(opts.only, ",") {
		if path = strings.TrimSpace(path); path != "" && only[path] {
			entries = append(entries, unit.Entry{Path: path, Mode: unit.Only})
			delete(only, path)
		}
	}

	for _, kv := range opts.env {
		env[kv.key] = kv.value
	}
	return entries, env, prefix, nil
}

func splitList(s string) map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[part] = true
		}
	}
	return set
}

type envPair struct {
	key   string
	value any
}

// envFlag collects repeated -env key=value flags. Values are decoded as YAML
// scalars or collections, so port=8080 is an int and tags=[a,b] a list.
type envFlag []envPair

func (e *envFlag) String() string {
	if e == nil {
		return ""
	}
	parts := make([]string, len(*e))
	for i, kv := range *e {
		parts[i] = fmt.Sprintf("%s=%v", kv.key, kv.value)
	}
	return strings.Join(parts, ",")
}

func (e *envFlag) Set(s string) error {
	key, raw, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return errors.New("expected key=value")
	}
	*e = append(*e, envPair{key: key, value: parseEnvValue(raw)})
	return nil
}

func parseEnvValue(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	return v
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
