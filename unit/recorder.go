// Package unit records pass/fail outcomes for a sequence of test units run
// against a shared environment, and renders a plain-text report.
//
// A Recorder is constructed by the caller and handed to every unit it runs.
// Test units call SetGroup, Test and TestList on it; anything they write to
// Recorder.Stdout while a batch is running is captured and shown in the
// report's "Printed Data" section instead of interleaving with the
// PASS/FAIL stream.
package unit

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"time"

	"github.com/dkoosis/unit/pkg/render"
	"github.com/spf13/afero"
)

// Config holds the display toggles and log destination of a Recorder.
type Config struct {
	ShowTests    bool // print a line per test and a marker per group
	ShowTotals   bool
	ShowFailing  bool
	ShowPassing  bool
	ShowContents bool // include captured incidental output in the report
	ShowColor    bool

	LogFile   string // written on every Results call when non-empty
	Overwrite bool   // truncate LogFile instead of appending

	GroupPrefix string
}

// DefaultConfig returns every toggle on except ShowPassing.
func DefaultConfig() Config {
	return Config{
		ShowTests:    true,
		ShowTotals:   true,
		ShowFailing:  true,
		ShowPassing:  false,
		ShowContents: true,
		ShowColor:    true,
	}
}

// Env is the set of named values handed to every test unit.
type Env map[string]any

// Failure is a recorded failing outcome. Actual and Expected keep their
// original types and are only stringified when the report is rendered.
type Failure struct {
	Note     string
	Actual   any
	Expected any
}

// group holds the passing and failing outcomes of one named section.
// Both collections are created together.
type group struct {
	name   string
	passes []passEntry
	fails  []failEntry
}

type passEntry struct {
	seq  int
	note string
}

type failEntry struct {
	seq int
	Failure
}

// Recorder owns all state of a test run. It is not safe for concurrent use.
type Recorder struct {
	cfg    Config
	env    Env
	out    io.Writer
	debug  io.Writer
	fs     afero.Fs
	now    func() time.Time
	loader Loader
	theme  render.Theme

	seq     int
	passed  int
	failed  int
	groups  map[string]*group
	order   []string
	current *group

	capture capture

	lists map[string]*list

	start time.Time
	end   time.Time
}

// Option configures a Recorder at construction.
type Option func(*Recorder)

// WithOutput sets the writer for the PASS/FAIL stream. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Recorder) { r.out = w }
}

// WithFs sets the file system used for the log file.
func WithFs(fs afero.Fs) Option {
	return func(r *Recorder) { r.fs = fs }
}

// WithClock overrides the wall clock used for the run timer.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithLoader sets the loader used by RunTests to resolve entry paths.
func WithLoader(l Loader) Option {
	return func(r *Recorder) { r.loader = l }
}

// WithDebug enables [DEBUG] diagnostics on w.
func WithDebug(w io.Writer) Option {
	return func(r *Recorder) { r.debug = w }
}

// WithConfig replaces the default display configuration.
func WithConfig(cfg Config) Option {
	return func(r *Recorder) { r.cfg = cfg }
}

// WithTheme sets the styles used for the banner and group markers.
func WithTheme(theme render.Theme) Option {
	return func(r *Recorder) { r.theme = theme }
}

// New creates a Recorder with DefaultConfig.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		cfg:    DefaultConfig(),
		env:    Env{},
		out:    os.Stdout,
		fs:     afero.NewOsFs(),
		now:    time.Now,
		theme:  render.MonoTheme(),
		groups: make(map[string]*group),
		lists:  make(map[string]*list),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.capture.pending = &bytes.Buffer{}
	r.start = r.now()
	r.end = r.start
	return r
}

func (r *Recorder) SetShowTests(v bool)    { r.cfg.ShowTests = v }
func (r *Recorder) SetShowTotals(v bool)   { r.cfg.ShowTotals = v }
func (r *Recorder) SetShowFailing(v bool)  { r.cfg.ShowFailing = v }
func (r *Recorder) SetShowPassing(v bool)  { r.cfg.ShowPassing = v }
func (r *Recorder) SetShowContents(v bool) { r.cfg.ShowContents = v }
func (r *Recorder) SetShowColor(v bool)    { r.cfg.ShowColor = v }

// SetLogFile records where Results writes the report. The file is not
// touched until Results is called.
func (r *Recorder) SetLogFile(path string, overwrite bool) {
	r.cfg.LogFile = path
	r.cfg.Overwrite = overwrite
}

// SetGroupPrefix sets the prefix joined to every subsequent group label.
func (r *Recorder) SetGroupPrefix(prefix string) { r.cfg.GroupPrefix = prefix }

// Configure replaces the whole display configuration.
func (r *Recorder) Configure(cfg Config) { r.cfg = cfg }

// Config returns the current display configuration.
func (r *Recorder) Config() Config { return r.cfg }

// SetEnv replaces the environment outright.
func (r *Recorder) SetEnv(env Env) {
	r.env = maps.Clone(env)
	if r.env == nil {
		r.env = Env{}
	}
}

// AddEnv merges env into the current environment; keys in env win.
func (r *Recorder) AddEnv(env Env) {
	maps.Copy(r.env, env)
}

// Env returns a copy of the current environment.
func (r *Recorder) Env() Env { return maps.Clone(r.env) }

// Passed returns the number of passing tests recorded so far.
func (r *Recorder) Passed() int { return r.passed }

// Failed returns the number of failing tests recorded so far.
func (r *Recorder) Failed() int { return r.failed }

// Total returns the number of tests recorded so far.
func (r *Recorder) Total() int { return r.seq }

// Group returns the effective name of the current group, or "" before the
// first SetGroup.
func (r *Recorder) Group() string {
	if r.current == nil {
		return ""
	}
	return r.current.name
}

func (r *Recorder) debugf(fn, format string, args ...any) {
	if r.debug == nil {
		return
	}
	fmt.Fprintf(r.debug, "[DEBUG %s] %s\n", fn, fmt.Sprintf(format, args...))
}
