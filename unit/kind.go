package unit

import (
	"errors"
	"fmt"
	"reflect"
)

// Kind identifies a class of error for exception-expectation tests.
// Two errors are of the same kind when their Kind values are equal.
type Kind string

// KindPanic is the kind of a recovered panic whose value carries no kind.
const KindPanic Kind = "panic"

// Kinder is implemented by errors that carry an explicit kind.
type Kinder interface {
	Kind() Kind
}

// Thunk is a deferred computation. Passed as the actual value to Test, it
// turns the test into a check that calling it fails with the expected Kind.
type Thunk func() error

// Error is an error tagged with a Kind.
type Error struct {
	kind Kind
	msg  string
}

// Raise returns an error of the given kind.
func Raise(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	if e.msg == "" {
		return string(e.kind)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Kind returns the error's kind.
func (e *Error) Kind() Kind { return e.kind }

// PanicError wraps a value recovered from a panicking thunk.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Kind is the kind of the panic value when it is an error, KindPanic otherwise.
func (e *PanicError) Kind() Kind {
	if err, ok := e.Value.(error); ok {
		return KindOf(err)
	}
	return KindPanic
}

// KindOf returns the kind of err: the Kind of the first error in its chain
// implementing Kinder, else the name of err's dynamic type. KindOf(nil) is "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return Kind(reflect.TypeOf(err).String())
}

// KindFor returns the kind KindOf reports for an untagged error of type E.
func KindFor[E error]() Kind {
	return Kind(reflect.TypeOf((*E)(nil)).Elem().String())
}

// call runs fn, converting a panic into a *PanicError.
func (t Thunk) call() (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v}
		}
	}()
	return t()
}

// asThunk reports whether v is a deferred computation and normalizes it.
func asThunk(v any) (Thunk, bool) {
	switch fn := v.(type) {
	case Thunk:
		return fn, fn != nil
	case func() error:
		return fn, fn != nil
	case func():
		if fn == nil {
			return nil, false
		}
		return func() error { fn(); return nil }, true
	}
	return nil, false
}

// expectedKind converts the expected argument of an exception test to a Kind.
func expectedKind(v any) Kind {
	switch k := v.(type) {
	case Kind:
		return k
	case string:
		return Kind(k)
	case error:
		return KindOf(k)
	}
	return ""
}
