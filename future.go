// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// noCopy marks a struct as non-copyable for go vet's copylocks check —
// the same idiom sync.WaitGroup and sync.Mutex themselves use. A Future
// backs a single one-shot rendezvous (see spawn.go's awaited field); go
// vet flags accidental copies at build time instead of a panic at
// runtime reaching an already-consumed one.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Future is the handle returned by Spawn. It must not be copied — use a
// pointer receiver or pass it by reference if it needs to travel beyond
// the scope that created it. Await may be called exactly once.
type Future[T any] struct {
	_     noCopy
	frame *spawnFrame[T]
}

// EscapingFuture is the handle returned by EscapingSpawn: safe to copy
// and pass around (e.g. stored in a struct field, sent on a channel);
// every copy shares the same frame. Await may
// still be called exactly once across however many copies exist.
type EscapingFuture[T any] struct {
	frame *spawnFrame[T]
}

// Spawn schedules f on the default pool and returns a Future for its
// result. The spawner continues running immediately; no stack switch
// happens until something calls Await.
func Spawn[T any](f func() T) Future[T] {
	return SpawnOn[T](Default(), f)
}

// SpawnOn is Spawn against an explicit pool rather than the default one.
func SpawnOn[T any](pool *ThreadPool, f func() T) Future[T] {
	fr := newSpawnFrame(f)
	fr.pool = pool
	pool.trace.Event("spawn")
	pool.enqueue(&fr.task)
	return Future[T]{frame: fr}
}

// EscapingSpawn is Spawn for a function whose Future needs to be copied
// or stored rather than consumed exactly where it was created.
func EscapingSpawn[T any](f func() T) EscapingFuture[T] {
	return EscapingSpawnOn[T](Default(), f)
}

// EscapingSpawnOn is EscapingSpawn against an explicit pool.
func EscapingSpawnOn[T any](pool *ThreadPool, f func() T) EscapingFuture[T] {
	fr := newSpawnFrame(f)
	fr.pool = pool
	pool.trace.Event("spawn")
	pool.enqueue(&fr.task)
	return EscapingFuture[T]{frame: fr}
}

// Go0 is the void-result convenience Spawn for a function with no return
// value, for fire-and-forget-shaped work that the caller still wants to
// join on.
func Go0(f func()) Future[struct{}] {
	return Spawn(func() struct{} {
		f()
		return struct{}{}
	})
}

// Await blocks until the spawned function completes, returning its
// result or the error wrapping a recovered panic. Calling Await a
// second time on the same Future panics.
func (fut *Future[T]) Await() (T, error) {
	return fut.frame.await()
}

// Await is EscapingFuture's counterpart to Future.Await. Exactly one
// call across every copy of fut may succeed; the rest panic.
func (fut EscapingFuture[T]) Await() (T, error) {
	return fut.frame.await()
}
