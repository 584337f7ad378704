// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestPoolDrainsBeforeCloseSucceeds checks that a task busy-waiting on a
// flag, the flag being set, and Await returning, leaves the pool
// drained so Close does not panic.
func TestPoolDrainsBeforeCloseSucceeds(t *testing.T) {
	p := NewThreadPool(2)

	var flag atomic.Bool
	fut := SpawnOn(p, func() int {
		for !flag.Load() {
			runtime.Gosched()
		}
		return 42
	})

	flag.Store(true)
	v, err := fut.Await()
	require.NoError(t, err)
	require.Equal(t, 42, v)

	require.NotPanics(t, func() { p.Close() })
}

// TestCloseWithOutstandingTasksPanics checks that destroying a pool with
// outstanding (undrained) tasks is a contract violation, modeled as a
// panic rather than silently discarding the remaining work.
func TestCloseWithOutstandingTasksPanics(t *testing.T) {
	p := NewThreadPool(1)

	block := make(chan struct{})
	p.enqueue(NewTask(func(*Task, int) { <-block }))

	// Give the sole worker time to pop the first task and block inside it,
	// so the second task is guaranteed to still be sitting in a work line
	// (outstanding) when Close is called.
	time.Sleep(20 * time.Millisecond)
	p.enqueue(NewTask(func(*Task, int) {}))
	time.Sleep(20 * time.Millisecond)

	require.Panics(t, func() { p.Close() })

	close(block)
	p.Join()
}

// TestThreadPoolExtractPreventsExecution checks that a task extracted
// before it starts never runs.
func TestThreadPoolExtractPreventsExecution(t *testing.T) {
	p := NewThreadPool(1)

	block := make(chan struct{})
	p.enqueue(NewTask(func(*Task, int) { <-block }))

	// Let the sole worker pick up the first task and park on block before
	// second is enqueued (a work line is LIFO, so a second task pushed while
	// the first is still queued would be popped first), so second is still
	// queued (not yet started) when we extract it.
	time.Sleep(20 * time.Millisecond)

	var flagSet atomic.Bool
	second := NewTask(func(*Task, int) { flagSet.Store(true) })
	p.enqueue(second)

	require.True(t, p.ExtractTask(second))
	require.False(t, second.inLine())

	close(block)
	p.Close()

	require.False(t, flagSet.Load())
}

// TestThreadPoolExtractFailsOnceStarted checks the converse: once a task
// has been popped and is running, it can no longer be extracted.
func TestThreadPoolExtractFailsOnceStarted(t *testing.T) {
	p := NewThreadPool(1)

	started := make(chan struct{})
	release := make(chan struct{})
	task := NewTask(func(*Task, int) {
		close(started)
		<-release
	})
	p.enqueue(task)

	<-started
	require.False(t, p.ExtractTask(task))

	close(release)
	p.Close()
}

// TestThreadPoolEveryTaskRunsExactlyOnce checks that, with M much
// greater than N, every enqueued task runs exactly once and the pool
// drains to zero outstanding tasks.
func TestThreadPoolEveryTaskRunsExactlyOnce(t *testing.T) {
	const n = 4
	const m = 200
	p := NewThreadPool(n)

	var ran atomic.Int64
	done := make(chan struct{}, m)
	for i := 0; i < m; i++ {
		p.enqueue(NewTask(func(*Task, int) {
			ran.Add(1)
			done <- struct{}{}
		}))
	}
	for i := 0; i < m; i++ {
		<-done
	}

	require.Equal(t, int64(m), ran.Load())
	p.Close()
}

// TestJoinedPoolNeverInvokesTaskAgain checks that after Join, no task
// function the pool ever ran is invoked again.
func TestJoinedPoolNeverInvokesTaskAgain(t *testing.T) {
	p := NewThreadPool(2)

	var ran atomic.Int64
	done := make(chan struct{})
	p.enqueue(NewTask(func(*Task, int) {
		ran.Add(1)
		close(done)
	}))
	<-done

	p.Join()

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int64(1), ran.Load())
}

// TestConcurrencyReadsEnvVar checks that CONCORE_MAX_CONCURRENCY
// overrides runtime.NumCPU() when it parses as a positive integer.
func TestConcurrencyReadsEnvVar(t *testing.T) {
	t.Setenv("CONCORE_MAX_CONCURRENCY", "7")
	require.Equal(t, 7, concurrency())

	t.Setenv("CONCORE_MAX_CONCURRENCY", "not-a-number")
	require.Equal(t, runtime.NumCPU(), concurrency())

	t.Setenv("CONCORE_MAX_CONCURRENCY", "-3")
	require.Equal(t, runtime.NumCPU(), concurrency())
}
