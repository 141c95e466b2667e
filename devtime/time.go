// Package devtime defines the time-value constraint shared by every other
// package in this module and a handful of helpers for the distinguished
// "infinity" value that spec.md §3 requires of T.
//
// Two concrete instantiations are supported out of the box: float64, the
// canonical continuous-time unit, and int64, for models that only ever
// advance by whole steps. Both are ~float64/~int64 so callers may define
// named types (e.g. type Seconds float64) without losing the helpers.
package devtime

import (
	"fmt"
	"math"
	"reflect"
)

// Numeric is the constraint satisfied by a simulation's time type T: a
// totally ordered, additive scalar. The stdlib's cmp.Ordered covers the
// ordering half; Numeric narrows it further to the two representations
// this module knows how to saturate-add and produce infinity for.
//
// golang.org/x/exp/constraints would express the ordering half just as
// well, but buys nothing extra here: T additionally needs a distinguished
// infinity, which neither stdlib cmp nor x/exp/constraints models, so a
// bespoke constraint plus the helpers below is the minimal honest choice.
type Numeric interface {
	~float64 | ~int64
}

// Inf returns the distinguished "never" value for T: +Inf for float64-like
// types, math.MaxInt64 for int64-like types. Dispatch is on reflect.Kind
// rather than a type switch on T's dynamic type, because the latter only
// ever matches the exact predeclared types float64/int64 and not a named
// type defined over one of them (e.g. type Seconds float64 boxes as
// Seconds, never as float64) — Kind reports the underlying representation
// regardless of the name, which is what this switch actually needs.
func Inf[T Numeric]() T {
	var zero T
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Float64:
		return T(math.Inf(1))
	case reflect.Int64:
		return T(math.MaxInt64)
	default:
		panic(fmt.Sprintf("devtime: unsupported time representation %T", zero))
	}
}

// IsInf reports whether t equals the infinity value for T.
func IsInf[T Numeric](t T) bool {
	return t == Inf[T]()
}

// Zero returns the additive identity for T.
func Zero[T Numeric]() T {
	return T(0)
}

// Add returns a+b, saturating to Inf[T]() if either operand already is
// infinite. Without this guard, t_last + ta() for a passive atomic
// (ta()=Inf) would silently wrap for the int64 instantiation.
func Add[T Numeric](a, b T) T {
	if IsInf(a) || IsInf(b) {
		return Inf[T]()
	}
	return a + b
}

// Sub returns a-b. Both operands must be finite; subtracting through
// infinity has no meaning in this engine (elapsed time e is always
// computed between two schedule times that already exist).
func Sub[T Numeric](a, b T) T {
	return a - b
}

// Less reports whether a orders strictly before b.
func Less[T Numeric](a, b T) bool {
	return a < b
}

// Equal reports whether a and b are the same instant.
func Equal[T Numeric](a, b T) bool {
	return a == b
}
