// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// Continuations are implemented on top of goroutines rather than raw
// register-switching assembly: a goroutine already is a first-class,
// stackful, cooperatively-suspended execution. callcc/resume/resumeOnTop
// are a symmetric transfer protocol over one channel per continuation —
// jumping to a continuation means sending on its channel, and suspending
// means blocking on a receive from one's own.

// transfer is what one continuation hands to another when jumping.
type transfer struct {
	// next is the continuation the resumed side should treat as "where
	// to jump back to". It is also the handle returned by callcc/resume.
	next *continuation
	// data carries an arbitrary payload across the jump (spawn uses this
	// to pass the frame pointer into the entry function).
	data any
	// onTop, when set, runs on the resumed side before that side treats
	// the transfer as an ordinary resume.
	onTop func(k *continuation, data any) *continuation
}

// continuation is an opaque handle to a suspended goroutine. Resuming a
// continuation invalidates it in effect: by the protocol in spawn.go, no
// continuation value is ever jumped to twice. The channel itself is
// buffered (depth 1) purely so the jumping side never blocks on a
// receiver that has not yet reached its awaitResume call.
type continuation struct {
	ch chan transfer
}

func newContinuation() *continuation {
	return &continuation{ch: make(chan transfer, 1)}
}

// awaitResume blocks until someone jumps to c, then returns the
// continuation that should now be considered "live" (the argument to
// whatever called resume/resumeOnTop targeting c) together with the
// payload, applying any onTop callback first.
func (c *continuation) awaitResume() (*continuation, any) {
	t := <-c.ch
	if t.onTop != nil {
		return t.onTop(t.next, t.data), nil
	}
	return t.next, t.data
}

// resume jumps to continuation k, carrying payload, and blocks until
// some continuation jumps back to the caller. It returns the
// continuation that jumped back and whatever payload it carried.
func resume(k *continuation, payload any) (*continuation, any) {
	here := newContinuation()
	k.ch <- transfer{next: here, data: payload}
	return here.awaitResume()
}

// resumeOnTop jumps to k exactly like resume, but arranges for fn to run
// on k's side before that side's own resumption logic proceeds. fn
// receives the continuation of the resumer (the "here" created by this
// call) and the payload, and returns the continuation that should
// actually be treated as resumed.
func resumeOnTop(k *continuation, payload any, fn func(caller *continuation, payload any) *continuation) (*continuation, any) {
	here := newContinuation()
	k.ch <- transfer{next: here, data: payload, onTop: fn}
	return here.awaitResume()
}

// callcc allocates a new stack via alloc, and jumps into it: f runs on
// the new stack, receiving the caller's continuation (the one
// representing this call to callcc). f must eventually return a
// continuation to jump to — ordinarily the caller's continuation it was
// given, though resume and resumeOnTop exist so f can instead hand back
// a different, previously-parked continuation when a caller needs one
// flow to jump straight into another. callcc returns whatever
// continuation eventually jumps back to the caller.
func callcc(alloc Allocator, f func(caller *continuation) *continuation) (*continuation, any) {
	stack := alloc.Allocate()
	stack.jobs <- f

	here := newContinuation()
	stack.entry.ch <- transfer{next: here, data: nil}
	return here.awaitResume()
}
