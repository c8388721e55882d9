package unit

import (
	"fmt"
	"reflect"
)

// DefaultGroup names the group that collects tests recorded before the
// first SetGroup.
const DefaultGroup = "default"

const (
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiReset = "\033[0m"
)

// SetGroup starts a new section. Later tests are recorded under label,
// joined to the group prefix when one is set. Naming a group again resumes
// it.
func (r *Recorder) SetGroup(label string) {
	r.closeBuffer()
	defer r.openBuffer()

	r.current = r.ensureGroup(r.groupName(label))
	if r.cfg.ShowTests {
		fmt.Fprintln(r.out, r.groupMarker(r.current.name))
	}
}

func (r *Recorder) groupName(label string) string {
	if r.cfg.GroupPrefix == "" {
		return label
	}
	return r.cfg.GroupPrefix + ": " + label
}

func (r *Recorder) ensureGroup(name string) *group {
	g, ok := r.groups[name]
	if !ok {
		g = &group{name: name}
		r.groups[name] = g
		r.order = append(r.order, name)
	}
	return g
}

// Test records one outcome and reports whether it passed.
//
// If actual is a Thunk, a func() error or a func(), it is called and the
// test passes only when it fails with an error whose Kind equals expected
// (a Kind, a kind name, or an error whose KindOf is used). A thunk that
// returns nil fails. Errors and panics from the thunk never escape.
//
// Otherwise actual and expected must have the same dynamic type and be
// deeply equal.
func (r *Recorder) Test(note string, actual, expected any) bool {
	r.closeBuffer()
	defer r.openBuffer()

	r.seq++
	seq := r.seq

	var pass bool
	if thunk, ok := asThunk(actual); ok {
		// Output printed by the thunk is captured as its own chunk.
		r.openBuffer()
		err := thunk.call()
		r.closeBuffer()

		want := expectedKind(expected)
		pass = err != nil && want != "" && KindOf(err) == want
		r.debugf("Test", "%s: thunk returned %v (kind %q, want %q)", note, err, KindOf(err), want)

		// Failures report the kinds involved rather than the closure.
		actual, expected = nil, want
		if err != nil {
			actual = KindOf(err)
		}
	} else {
		pass = strictEqual(actual, expected)
	}

	if r.current == nil {
		r.current = r.ensureGroup(r.groupName(DefaultGroup))
	}
	if pass {
		r.passed++
		r.current.passes = append(r.current.passes, passEntry{seq: seq, note: note})
	} else {
		r.failed++
		r.current.fails = append(r.current.fails, failEntry{
			seq:     seq,
			Failure: Failure{Note: note, Actual: actual, Expected: expected},
		})
	}
	if r.cfg.ShowTests {
		fmt.Fprintf(r.out, "%03d %s %s\n", seq, r.tag(pass), note)
	}
	r.end = r.now()
	return pass
}

// Assert records a test that passes when actual is the boolean true.
func (r *Recorder) Assert(note string, actual any) bool {
	return r.Test(note, actual, true)
}

// tag returns the PASS/FAIL marker, colored when color output is on.
func (r *Recorder) tag(pass bool) string {
	text, color := "FAIL", ansiRed
	if pass {
		text, color = "PASS", ansiGreen
	}
	if !r.cfg.ShowColor {
		return text
	}
	return color + text + ansiReset
}

// strictEqual reports whether a and b have the same dynamic type and value.
// Uncomparable values such as slices and maps are compared element-wise.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}
