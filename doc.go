// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package concore provides structured parallelism on top of stackful,
// symmetric coroutines and a work-stealing thread pool.
//
// # Spawn and Await
//
// [Spawn] schedules a function onto the pool and returns a [Future]
// immediately; the spawner keeps running its own code. [Future.Await]
// blocks until the spawned function completes, at which point it
// returns the function's result or, if the function panicked, the
// recovered value wrapped as an error.
//
//	f := concore.Spawn(func() int { return 21 * 2 })
//	v, err := f.Await()
//
// [EscapingSpawn] is the same primitive for a function whose result
// outlives the stack frame that spawned it (the returned
// [EscapingFuture] may be copied and awaited from anywhere).
//
// # Thread Inversion
//
// Unlike a plain goroutine, a task running on the pool does not leave an
// idle worker behind when something awaits it: the awaiting execution
// either discovers the result is already in, or helps the pool make
// progress on other queued work until its own task completes. See the
// design notes for how this module realizes that guarantee on top of Go's
// goroutine scheduler rather than raw stack-switching assembly.
//
// # Configuration
//
// The default pool returned by [Default] is sized from the
// CONCORE_MAX_CONCURRENCY environment variable, falling back to
// runtime.NumCPU(). Call [NewThreadPool] for an explicitly sized pool.
//
// # Non-goals
//
// This package does not implement fair scheduling, task priorities,
// distributed scheduling, spawn cancellation, or deadlock detection.
package concore
