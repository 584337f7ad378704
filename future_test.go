// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSpawnAwaitBasic covers the case where the spawned function has
// already had time to run before Await is called, so Await observes the
// result already published and the function ran exactly once.
func TestSpawnAwaitBasic(t *testing.T) {
	var calls atomic.Int32
	fut := Spawn(func() int {
		calls.Add(1)
		return 13
	})

	time.Sleep(time.Millisecond)

	v, err := fut.Await()
	require.NoError(t, err)
	require.Equal(t, 13, v)
	require.Equal(t, int32(1), calls.Load())
}

// TestSpawnAwaitInversionEarly covers the case where the awaiter reaches
// Await before the spawned function finishes, so the rendezvous must
// resolve via the "worker finishes later" branch rather than the
// "already finished" fast path.
func TestSpawnAwaitInversionEarly(t *testing.T) {
	fut := Spawn(func() int {
		time.Sleep(100 * time.Millisecond)
		return 7
	})

	v, err := fut.Await()
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

// TestSpawnAwaitInversionLate covers the case where the spawned function
// finishes well before Await is ever called, so the rendezvous takes the
// fast path and returns without helping the pool drain.
func TestSpawnAwaitInversionLate(t *testing.T) {
	fut := Spawn(func() int { return 7 })

	time.Sleep(100 * time.Millisecond)

	v, err := fut.Await()
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

// TestSpawnSaturation spawns 4N tasks on an N-worker pool, each
// returning its own index; the results awaited from all of them must sum
// to the sum of the indices regardless of scheduling order.
func TestSpawnSaturation(t *testing.T) {
	const n = 4
	p := NewThreadPool(n)

	const m = 4 * n
	futs := make([]Future[int], m)
	for i := 0; i < m; i++ {
		i := i
		futs[i] = SpawnOn(p, func() int { return i })
	}

	sum := 0
	for i := range futs {
		v, err := futs[i].Await()
		require.NoError(t, err)
		sum += v
	}
	require.Equal(t, m*(m-1)/2, sum)

	p.Close()
}

// TestSpawnPanicPropagatesAsError checks that a panic inside the
// spawned function surfaces from Await as an error, never re-panicking
// an unrelated goroutine.
func TestSpawnPanicPropagatesAsError(t *testing.T) {
	fut := Spawn(func() int {
		panic("boom")
	})

	v, err := fut.Await()
	require.Equal(t, 0, v)
	require.Error(t, err)

	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	require.Equal(t, "boom", panicErr.Recovered)
}

// TestFutureAwaitTwicePanics checks that awaiting a Future a second
// time is treated as a contract violation: it panics rather than
// silently returning a stale or zero result.
func TestFutureAwaitTwicePanics(t *testing.T) {
	fut := Spawn(func() int { return 1 })

	_, err := fut.Await()
	require.NoError(t, err)

	require.Panics(t, func() {
		_, _ = fut.Await()
	})
}

// TestEscapingFutureAwaitOnceAcrossCopies checks that every copy of an
// EscapingFuture shares one frame, and exactly one Await call across
// however many copies may succeed.
func TestEscapingFutureAwaitOnceAcrossCopies(t *testing.T) {
	fut := EscapingSpawn(func() int { return 99 })
	copy1 := fut
	copy2 := fut

	successes := make(chan int, 2)
	recoveries := make(chan any, 2)

	run := func(f EscapingFuture[int]) {
		defer func() {
			if r := recover(); r != nil {
				recoveries <- r
			}
		}()
		v, err := f.Await()
		require.NoError(t, err)
		successes <- v
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); run(copy1) }()
	go func() { defer wg.Done(); run(copy2) }()
	wg.Wait()
	close(successes)
	close(recoveries)

	require.Len(t, successes, 1)
	require.Equal(t, 99, <-successes)
	require.Len(t, recoveries, 1)
}

// TestGo0RunsVoidFunctionExactlyOnce covers the void-result convenience
// wrapper Go0.
func TestGo0RunsVoidFunctionExactlyOnce(t *testing.T) {
	var calls atomic.Int32
	fut := Go0(func() { calls.Add(1) })

	_, err := fut.Await()
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())
}

// TestIndependentSpawnsCommute checks that two independent spawns'
// results are independent of interleaving.
func TestIndependentSpawnsCommute(t *testing.T) {
	a := Spawn(func() int { return 2 })
	b := Spawn(func() int { return 3 })

	va, errA := a.Await()
	vb, errB := b.Await()

	require.NoError(t, errA)
	require.NoError(t, errB)
	require.Equal(t, 2, va)
	require.Equal(t, 3, vb)
}
