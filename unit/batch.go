package unit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkoosis/unit/pkg/render"
)

// Mode controls whether a batch entry runs.
type Mode int

const (
	Skip Mode = iota
	Run
	// Only entries run to the exclusion of every Run entry in the batch.
	Only
)

func (m Mode) String() string {
	switch m {
	case Skip:
		return "skip"
	case Run:
		return "run"
	case Only:
		return "only"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("unknown run mode")

// ParseMode parses "skip", "run" or "only", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return Skip, nil
	case "run", "":
		return Run, nil
	case "only":
		return Only, nil
	}
	return Skip, fmt.Errorf("%w: %q (expected skip, run or only)", ErrUnknownMode, s)
}

// Entry is one test unit in a batch.
type Entry struct {
	Path string
	Mode Mode
}

// Unit is a runnable test unit. Run receives the recorder to report into
// and a copy of the environment current when the unit starts.
type Unit interface {
	Run(ctx context.Context, r *Recorder, env Env) error
}

// UnitFunc adapts a function to Unit.
type UnitFunc func(ctx context.Context, r *Recorder, env Env) error

// Run calls f.
func (f UnitFunc) Run(ctx context.Context, r *Recorder, env Env) error {
	return f(ctx, r, env)
}

// Loader resolves a batch entry path to a Unit.
type Loader interface {
	Load(path string) (Unit, error)
}

var (
	// ErrNoLoader is returned by RunTests when the Recorder has no Loader.
	ErrNoLoader = errors.New("no loader configured")

	// ErrUnitNotFound is returned by a Registry for unregistered paths.
	ErrUnitNotFound = errors.New("test unit not found")
)

// Registry is a Loader over units registered in process.
type Registry struct {
	units map[string]Unit
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]Unit)}
}

// Register adds u under path, replacing any unit already registered there.
func (g *Registry) Register(path string, u Unit) {
	g.units[path] = u
}

// RegisterFunc registers a function as a unit.
func (g *Registry) RegisterFunc(path string, fn func(ctx context.Context, r *Recorder, env Env) error) {
	g.Register(path, UnitFunc(fn))
}

// Load implements Loader.
func (g *Registry) Load(path string) (Unit, error) {
	u, ok := g.units[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, path)
	}
	return u, nil
}

// SetLoader replaces the loader used by RunTests.
func (r *Recorder) SetLoader(l Loader) { r.loader = l }

// RunTests runs a batch. If any entry is Only, exactly the Only entries run;
// otherwise every entry that is not Skip runs. Entries run in order.
//
// Incidental output written by the units is captured for the report. A unit
// that cannot be loaded, or whose Run returns an error, aborts the batch and
// the error is returned.
func (r *Recorder) RunTests(ctx context.Context, entries []Entry) error {
	if r.loader == nil {
		return ErrNoLoader
	}

	r.open()
	defer r.close()

	r.start = r.now()
	selected := selectEntries(entries)
	if r.cfg.ShowTests {
		fmt.Fprintln(r.out, r.banner(len(selected)))
	}

	for _, e := range selected {
		if err := r.execute(ctx, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// selectEntries applies Only/Skip semantics.
func selectEntries(entries []Entry) []Entry {
	var only, run []Entry
	for _, e := range entries {
		switch e.Mode {
		case Only:
			only = append(only, e)
		case Skip:
		default:
			run = append(run, e)
		}
	}
	if len(only) > 0 {
		return only
	}
	return run
}

func (r *Recorder) execute(ctx context.Context, path string) error {
	r.debugf("RunTests", "loading %s", path)
	u, err := r.loader.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if err := u.Run(ctx, r, r.Env()); err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}
	r.debugf("RunTests", "finished %s (%d/%d passed)", path, r.passed, r.seq)
	return nil
}

func (r *Recorder) styles() render.Theme {
	if !r.cfg.ShowColor {
		return render.MonoTheme()
	}
	return r.theme
}
