// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"sync/atomic"
)

// syncState tracks which of the two rendezvous parties — the spawner
// calling Await, or the worker finishing the spawned function — reaches
// the synchronization point first.
type syncState int32

const (
	stateInitial syncState = iota
	stateMainFinished
	stateAsyncFinished
)

// spawnFrame is the shared state between a spawned task and its Future:
// the rendezvous flag, the eventual result, and the one-shot guard on
// Await. It is allocated once per Spawn call and referenced by both the
// Task the pool runs and the Future returned to the caller.
type spawnFrame[T any] struct {
	task         Task
	pool         *ThreadPool
	syncState    atomic.Int32
	done         chan struct{}
	userFunction func() T
	result       Result[T]
	// awaited guards the exactly-once contract on await: a second call
	// must panic rather than re-enter the rendezvous and return a stale
	// or zero result. CompareAndSwap makes the check itself the
	// synchronization point, so two concurrent Await calls on the same
	// frame can never both believe they went first.
	awaited atomic.Bool
}

func newSpawnFrame[T any](f func() T) *spawnFrame[T] {
	fr := &spawnFrame[T]{userFunction: f, done: make(chan struct{})}
	fr.task.fn = fr.executeSpawnTask
	return fr
}

// executeSpawnTask runs on a worker goroutine as the Task popped from a
// WorkLine. It asks the stack allocator for a fresh coroutine to run the
// user function on, so a panic inside it unwinds only that coroutine,
// never the worker goroutine driving the pool's loop.
func (fr *spawnFrame[T]) executeSpawnTask(t *Task, lineIndex int) {
	callcc(defaultAllocator, func(callerK *continuation) *continuation {
		fr.result = runRecovering(fr.userFunction)
		return fr.onAsyncComplete(callerK)
	})
}

// onAsyncComplete is the worker side of the rendezvous: the Swap to
// stateAsyncFinished both publishes the result (await's own Swap gives
// the two sides a total order over who moved first) and discovers
// whether the spawner already reached await. If it had, closing done
// wakes its helper loop on the very next check.
//
// A literal stack-switch runtime can migrate the spawner's suspended
// continuation directly onto whichever thread finishes the work, so the
// awaiting flow never has to poll. Go gives no way to hand one
// goroutine's execution to another — only the goroutine itself decides
// where it blocks — so this module gets the same externally observable
// guarantee (the awaiting flow keeps the pool moving instead of sitting
// idle) by having the loser of the race call into the pool's own
// work-stealing loop (helpUntil) until the winner's signal arrives,
// rather than by migrating a continuation across goroutines.
func (fr *spawnFrame[T]) onAsyncComplete(callerK *continuation) *continuation {
	prev := syncState(fr.syncState.Swap(int32(stateAsyncFinished)))
	if prev == stateMainFinished {
		fr.pool.trace.Event("inversion")
		close(fr.done)
	}
	return callerK
}

// await implements the spawner side of the rendezvous. It enforces the
// exactly-once contract before touching any shared state, then either
// observes the worker already finished (fast path) or helps the pool
// make progress until the worker's completion signal arrives.
func (fr *spawnFrame[T]) await() (T, error) {
	if !fr.awaited.CompareAndSwap(false, true) {
		panic("concore: Future.Await called twice")
	}
	fr.pool.trace.Event("await")
	prev := syncState(fr.syncState.Swap(int32(stateMainFinished)))
	if prev != stateAsyncFinished {
		fr.pool.helpUntil(fr.done)
	}
	v, _ := fr.result.Value()
	return v, fr.result.Error()
}
