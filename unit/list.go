package unit

import "fmt"

// list is a named sequence of expected values with a cursor.
type list struct {
	expected []any
	cursor   int
}

// SetList declares the values later TestList calls on name are compared
// against, in order, and rewinds the cursor to the first of them.
func (r *Recorder) SetList(name string, expected []any) {
	r.lists[name] = &list{expected: expected}
}

// TestList compares actual against the next expected value of the named
// list under the note "List <name>: <index>" and advances the cursor.
//
// Calling TestList on an unknown list, or more times than the list has
// values, panics.
func (r *Recorder) TestList(name string, actual any) bool {
	l, ok := r.lists[name]
	if !ok {
		panic(fmt.Sprintf("unit: TestList on undeclared list %q", name))
	}
	if l.cursor >= len(l.expected) {
		panic(fmt.Sprintf("unit: list %q has no expected value at index %d (length %d)", name, l.cursor, len(l.expected)))
	}

	expected := l.expected[l.cursor]
	fmt.Fprintf(r.Stdout(), "List %s[%d]: actual %v, expected %v\n", name, l.cursor, actual, expected)
	pass := r.Test(fmt.Sprintf("List %s: %d", name, l.cursor), actual, expected)
	l.cursor++
	return pass
}
