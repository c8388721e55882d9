package script

import (
	"errors"
	"fmt"

	"github.com/dkoosis/unit/unit"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// newModule exposes the test-side Recorder calls to Starlark.
func newModule(r *unit.Recorder) *starlarkstruct.Module {
	b := builtins{r: r}
	return &starlarkstruct.Module{
		Name: ModuleName,
		Members: starlark.StringDict{
			"set_group": starlark.NewBuiltin("set_group", b.setGroup),
			"test":      starlark.NewBuiltin("test", b.test),
			"assert":    starlark.NewBuiltin("assert", b.assert),
			"set_list":  starlark.NewBuiltin("set_list", b.setList),
			"test_list": starlark.NewBuiltin("test_list", b.testList),
			"throw":     starlark.NewBuiltin("throw", throw),
		},
	}
}

type builtins struct {
	r *unit.Recorder
}

func (b builtins) setGroup(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var label string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "label", &label); err != nil {
		return nil, err
	}
	b.r.SetGroup(label)
	return starlark.None, nil
}

func (b builtins) test(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		note     string
		actual   starlark.Value
		expected starlark.Value = starlark.True
	)
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "note", &note, "actual", &actual, "expected?", &expected); err != nil {
		return nil, err
	}
	return starlark.Bool(b.record(thread, note, actual, expected)), nil
}

func (b builtins) assert(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		note   string
		actual starlark.Value
	)
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "note", &note, "actual", &actual); err != nil {
		return nil, err
	}
	return starlark.Bool(b.record(thread, note, actual, starlark.True)), nil
}

// record forwards one test to the recorder. A callable actual becomes a
// thunk and expected names the error kind it must raise.
func (b builtins) record(thread *starlark.Thread, note string, actual, expected starlark.Value) bool {
	if callable, ok := actual.(starlark.Callable); ok {
		return b.r.Test(note, thunk(thread, callable), kindOf(expected))
	}
	return b.r.Test(note, FromStarlark(actual), FromStarlark(expected))
}

func (b builtins) setList(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name   string
		values starlark.Iterable
	)
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "values", &values); err != nil {
		return nil, err
	}
	var expected []any
	iter := values.Iterate()
	defer iter.Done()
	var v starlark.Value
	for iter.Next(&v) {
		expected = append(expected, FromStarlark(v))
	}
	b.r.SetList(name, expected)
	return starlark.None, nil
}

// testList turns a list overrun into a script error, which aborts the run.
func (b builtins) testList(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (result starlark.Value, err error) {
	var (
		name   string
		actual starlark.Value
	)
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "actual", &actual); err != nil {
		return nil, err
	}
	defer func() {
		if v := recover(); v != nil {
			result, err = nil, fmt.Errorf("%s: %v", fn.Name(), v)
		}
	}()
	return starlark.Bool(b.r.TestList(name, FromStarlark(actual))), nil
}

// throw fails the current computation with an error of the given kind.
func throw(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var kind, msg string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "kind", &kind, "msg?", &msg); err != nil {
		return nil, err
	}
	return nil, unit.Raise(unit.Kind(kind), msg)
}

// thunk calls fn with no arguments. Errors without a kind of their own,
// such as fail() or a bad index, are reported as KindFail.
func thunk(thread *starlark.Thread, fn starlark.Callable) unit.Thunk {
	return func() error {
		_, err := starlark.Call(thread, fn, nil, nil)
		if err == nil {
			return nil
		}
		var k unit.Kinder
		if errors.As(err, &k) {
			return err
		}
		return unit.Raise(KindFail, err.Error())
	}
}

// kindOf reads the expected kind of an exception test. Strings name a kind
// directly; anything else uses its string form.
func kindOf(v starlark.Value) unit.Kind {
	if s, ok := starlark.AsString(v); ok {
		return unit.Kind(s)
	}
	return unit.Kind(v.String())
}
