// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import "fmt"

// Result carries a spawned function's outcome across the inversion
// boundary: either the value it produced, or the panic it raised. A
// single two-state value rather than a separate error-channel type,
// since a spawned function either returns a T or panics — there is no
// third outcome to make room for.
type Result[T any] struct {
	ok    bool
	value T
	err   error
}

// Ok wraps a successful result.
func Ok[T any](v T) Result[T] { return Result[T]{ok: true, value: v} }

// Err wraps a failure.
func Err[T any](err error) Result[T] { return Result[T]{err: err} }

// IsOk reports whether the computation completed without panicking.
func (r Result[T]) IsOk() bool { return r.ok }

// Value returns the completed value and true, or the zero value and
// false if the computation panicked.
func (r Result[T]) Value() (T, bool) { return r.value, r.ok }

// Error returns the recovered panic, wrapped as an error, or nil on
// success.
func (r Result[T]) Error() error { return r.err }

// PanicError wraps a value recovered from a panic inside a spawned
// function, surfaced to the awaiter as an ordinary error instead of
// re-panicking an unrelated goroutine.
type PanicError struct {
	Recovered any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("concore: spawned function panicked: %v", e.Recovered)
}

// runRecovering invokes f and converts a panic into a Result carrying a
// *PanicError, so executeSpawnTask never lets a user panic escape onto
// the worker goroutine that happens to be running it.
func runRecovering[T any](f func() T) (result Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = Err[T](&PanicError{Recovered: r})
		}
	}()
	return Ok(f())
}
