// Package script runs Starlark test files against a unit.Recorder.
//
// A test file sees every environment value as a global and the recorder as
// the module `unit`:
//
//	unit.set_group("strings")
//	unit.test("upper", "abc".upper(), "ABC")
//	unit.test("bad index", lambda: [][1], "fail")
//	unit.test("raises", lambda: unit.throw("TypeError", "nope"), "TypeError")
//	unit.set_list("ids", [1, 2, 3])
//	unit.test_list("ids", next_id())
//
// print() output is incidental and lands in the report's captured section.
package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkoosis/unit/unit"
	"github.com/spf13/afero"
	"go.starlark.net/starlark"
)

// ModuleName is the global under which test files reach the recorder.
const ModuleName = "unit"

// KindFail is the kind of errors raised with Starlark's fail() or by the
// interpreter itself.
const KindFail unit.Kind = "fail"

// Loader loads Starlark test files from a file system.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a Loader reading from fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load reads the file at path. A missing or unreadable file is an error;
// syntax errors surface when the unit runs.
func (l *Loader) Load(path string) (unit.Unit, error) {
	src, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading test file: %w", err)
	}
	return &File{Path: path, Src: src}, nil
}

// File is a loaded Starlark test file.
type File struct {
	Path string
	Src  []byte
}

// Run executes the file with env and the recorder predeclared. Cancelling
// ctx interrupts the script.
func (f *File) Run(ctx context.Context, r *unit.Recorder, env unit.Env) error {
	predeclared, err := globals(env)
	if err != nil {
		return err
	}
	predeclared[ModuleName] = newModule(r)

	thread := &starlark.Thread{
		Name: f.Path,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(r.Stdout(), msg)
		},
	}
	stop := context.AfterFunc(ctx, func() { thread.Cancel(context.Cause(ctx).Error()) })
	defer stop()

	if _, err := starlark.ExecFile(thread, f.Path, f.Src, predeclared); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return fmt.Errorf("%w\n%s", err, evalErr.CallStack)
		}
		return err
	}
	return nil
}

// globals converts env to Starlark values.
func globals(env unit.Env) (starlark.StringDict, error) {
	dict := make(starlark.StringDict, len(env)+1)
	for name, v := range env {
		if name == ModuleName {
			return nil, fmt.Errorf("environment key %q shadows the %s module", name, ModuleName)
		}
		sv, err := ToStarlark(v)
		if err != nil {
			return nil, fmt.Errorf("environment key %q: %w", name, err)
		}
		dict[name] = sv
	}
	return dict, nil
}
