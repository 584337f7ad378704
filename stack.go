// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import "sync"

// Stack is the resource callcc allocates to run a new continuation: a
// goroutine parked on jobs, ready to receive one job function and then
// wait on entry.ch to be jumped into. A
// goroutine's stack is grown and moved by the Go runtime on its own, so
// this type owns no memory-layout concerns (guard gaps, alignment) —
// only the lifecycle of the goroutine itself.
type Stack struct {
	entry *continuation
	jobs  chan func(caller *continuation) *continuation
}

// newStack starts the goroutine loop backing s. The loop runs one job
// per iteration: receive a job function, wait to be jumped into, run the
// function, release the stack (pool it or let it die, per alloc), and
// jump to whatever the job decided.
func newStack(alloc Allocator) *Stack {
	s := &Stack{
		entry: newContinuation(),
		jobs:  make(chan func(caller *continuation) *continuation),
	}
	go s.loop(alloc)
	return s
}

func (s *Stack) loop(alloc Allocator) {
	for f := range s.jobs {
		callerK, _ := s.entry.awaitResume()
		target := f(callerK)
		// Release happens before the exit jump so the resumed side never
		// observes a stack that is still mid-teardown. For the pooled
		// allocator this recycles s; for the fresh allocator it tears s
		// down and this loop returns.
		alive := alloc.release(s)
		target.ch <- transfer{next: s.entry, data: nil}
		if !alive {
			return
		}
	}
}

// Allocator allocates a stack capable of running one continuation
// function, and reclaims it when the running continuation exits.
// Implementations may pool, always create fresh goroutines, or anything
// in between — no fragmentation concerns apply to a goroutine-backed
// stack.
type Allocator interface {
	// Allocate returns a Stack ready to accept one job via callcc.
	Allocate() *Stack
	// release is called by the owning goroutine's loop once its job has
	// produced an exit target. It returns whether the stack's goroutine
	// loop should keep running (true: recycle, false: let the goroutine
	// return and exit).
	release(s *Stack) bool
}

// PooledAllocator recycles Stacks (and their backing goroutines) via a
// sync.Pool. This is the default allocator: a goroutine that finishes a
// callcc job parks itself back into the pool instead of exiting,
// avoiding goroutine creation churn on the hot path (spawn/await under
// load).
type PooledAllocator struct {
	pool sync.Pool
}

// NewPooledAllocator returns a ready-to-use pooled stack allocator.
func NewPooledAllocator() *PooledAllocator {
	a := &PooledAllocator{}
	a.pool.New = func() any { return nil }
	return a
}

func (a *PooledAllocator) Allocate() *Stack {
	if v := a.pool.Get(); v != nil {
		return v.(*Stack)
	}
	return newStack(a)
}

func (a *PooledAllocator) release(s *Stack) bool {
	a.pool.Put(s)
	return true
}

// FreshAllocator always starts a new goroutine per callcc call and lets
// it exit afterward, for callers that would rather trade allocation cost
// for not holding idle goroutines.
type FreshAllocator struct{}

func (FreshAllocator) Allocate() *Stack {
	return newStack(FreshAllocator{})
}

func (FreshAllocator) release(*Stack) bool {
	return false
}

// defaultAllocator is used wherever the spawn/await machinery needs a
// stack and the caller hasn't specified one explicitly.
var defaultAllocator = NewPooledAllocator()
