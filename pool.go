// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// concurrency returns the desired level of parallelism: the
// CONCORE_MAX_CONCURRENCY env var, if it parses as a positive integer,
// otherwise runtime.NumCPU().
func concurrency() int {
	if v := os.Getenv("CONCORE_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

// workerThreadData is a worker's own bookkeeping: outstanding wake
// requests, its current wakeup token, and the line index a notifier
// wants it to start looking at on its next pass.
type workerThreadData struct {
	wakeRequests       atomic.Int32
	helper             atomic.Pointer[sleepHelper]
	workLineStartIndex atomic.Int32
}

func newWorkerThreadData() *workerThreadData {
	w := &workerThreadData{}
	w.wakeRequests.Store(1)
	return w
}

// tryNotify records a wake request and, if this worker looked idle,
// stores hint as the line its next sweep starts at and notifies the
// wakeup token of the helper it parked on. Reports whether it actually
// woke anything.
func (w *workerThreadData) tryNotify(hint int) bool {
	if w.wakeRequests.Add(1) == 1 {
		w.workLineStartIndex.Store(int32(hint))
		if h := w.helper.Load(); h != nil {
			getToken(h).notify()
		}
		return true
	}
	return false
}

// sleep parks the worker until notified or told to stop, then re-arms
// for the next cycle. Returns the line index a notifier hinted at.
func (w *workerThreadData) sleep(stopRequested *atomic.Bool) int {
	h := newSleepHelper()
	w.helper.Store(h)
	if w.wakeRequests.Add(-1) == 0 {
		if !stopRequested.Load() {
			h.sleep()
		}
	}
	getToken(h).invalidate()
	w.wakeRequests.Store(1)
	return int(w.workLineStartIndex.Load())
}

// ThreadPool is a fixed-size, work-stealing pool: one WorkLine per
// worker, round-robin dispatch with a steal-sweep fallback, wake-one
// notification, and drain-before-close semantics.
type ThreadPool struct {
	workLines     []WorkLine
	workers       []*workerThreadData
	numTasks      atomic.Int64
	lineToPush    atomic.Uint32
	stopRequested atomic.Bool
	wg            sync.WaitGroup
	trace         Trace
}

// NewThreadPool creates a pool with exactly n worker goroutines. n must
// be positive.
func NewThreadPool(n int) *ThreadPool {
	if n <= 0 {
		panic("concore: NewThreadPool requires a positive worker count")
	}
	p := &ThreadPool{
		workLines: make([]WorkLine, n),
		workers:   make([]*workerThreadData, n),
		trace:     defaultTrace,
	}
	for i := range p.workers {
		p.workers[i] = newWorkerThreadData()
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.workerMain(i)
	}
	return p
}

// NewDefaultThreadPool sizes a pool per concurrency(): CONCORE_MAX_CONCURRENCY,
// or runtime.NumCPU().
func NewDefaultThreadPool() *ThreadPool {
	return NewThreadPool(concurrency())
}

// enqueue tries a non-blocking push on every line in round-robin order
// starting from a fresh line counter, falling back to a blocking push on
// the first-chosen line if every line was momentarily locked by another
// operation.
func (p *ThreadPool) enqueue(t *Task) {
	p.trace.Event("enqueue")
	n := uint32(len(p.workLines))
	start := p.lineToPush.Add(1) % n

	for i := uint32(0); i < n; i++ {
		idx := (start + i) % n
		if p.workLines[idx].TryPush(t) {
			p.notifyOne(int(idx))
			return
		}
	}
	idx := int(start)
	p.workLines[idx].Push(t)
	p.notifyOne(idx)
}

// ExtractTask removes t from whatever line it is currently queued in, if
// it has not started executing yet. Reports whether extraction
// succeeded.
func (p *ThreadPool) ExtractTask(t *Task) bool {
	line := t.workerData
	if line == nil {
		return false
	}
	ok := line.Extract(t)
	if ok {
		p.numTasks.Add(-1)
	}
	return ok
}

// notifyOne bumps the task counter and, if the pool looked
// under-subscribed just before this push, wakes the first worker it
// finds idle.
func (p *ThreadPool) notifyOne(hint int) {
	p.trace.Event("notify_one")
	old := p.numTasks.Add(1) - 1
	if old <= int64(len(p.workers)) {
		for _, w := range p.workers {
			if w.tryNotify(hint) {
				return
			}
		}
	}
}

// Join stops every worker and waits for them to return, including a
// broadcast wake so no worker is left parked on its wakeup token.
func (p *ThreadPool) Join() {
	p.stopRequested.Store(true)
	for _, w := range p.workers {
		w.tryNotify(0)
	}
	p.wg.Wait()
}

// Close panics if tasks remain undrained, since a pool torn down with
// work still outstanding is a programming error rather than a condition
// to silently swallow, then Joins.
func (p *ThreadPool) Close() {
	if p.numTasks.Load() > 0 {
		panic("concore: ThreadPool closed with outstanding tasks; drain before closing")
	}
	p.Join()
}

// workerMain is the worker loop. This goroutine's identity never
// changes for the pool's whole lifetime: once entered, workerMain only
// ever returns to the goroutine the pool started it on, so there is no
// worker-identity bookkeeping to save or restore around a task call.
func (p *ThreadPool) workerMain(index int) {
	defer p.wg.Done()
	p.trace.Event("worker_start", "worker", workerName(index))
	w := p.workers[index]
	hint := index

	for !p.stopRequested.Load() {
		if p.numTasks.Load() == 0 {
			hint = w.sleep(&p.stopRequested)
		}

		task, line := p.trySteal(hint)
		if task != nil {
			p.numTasks.Add(-1)
			task.fn(task, line)
		}
	}
	p.trace.Event("worker_end", "worker", workerName(index))
}

// workerName formats a stable, human-readable identity for trace output.
func workerName(index int) string {
	return "concore-worker-" + strconv.Itoa(index)
}

// trySteal sweeps up to 2*N lines starting at hint, returning the first
// task it finds and the line it came from. The same sweep backs both
// workerMain and helpUntil, so an awaiting goroutine that pitches in
// makes exactly the progress a dedicated worker would.
func (p *ThreadPool) trySteal(hint int) (*Task, int) {
	n := len(p.workLines)
	for i := 0; i < 2*n; i++ {
		line := (i + hint) % n
		if task := p.workLines[line].TryPop(); task != nil {
			p.trace.Event("steal_hit")
			return task, line
		}
	}
	return nil, 0
}

// helpUntil is how an awaiting goroutine keeps the pool moving instead
// of sitting idle while it waits for a specific task to finish: rather
// than blocking outright, it steals and runs other queued tasks itself
// until done is closed, checking between every task and during a short
// backoff when none is found. This turns what would otherwise be wasted
// wait time into useful pool throughput.
func (p *ThreadPool) helpUntil(done <-chan struct{}) {
	hint := 0
	backoff := time.Microsecond
	for {
		select {
		case <-done:
			return
		default:
		}
		if task, line := p.trySteal(hint); task != nil {
			p.numTasks.Add(-1)
			task.fn(task, line)
			hint = line
			backoff = time.Microsecond
			continue
		}
		select {
		case <-done:
			return
		case <-time.After(backoff):
		}
		if backoff < time.Millisecond {
			backoff *= 2
		}
	}
}

var (
	defaultPoolOnce sync.Once
	defaultPool     *ThreadPool
)

// Default returns the lazily-initialized, process-wide thread pool,
// sized by concurrency().
func Default() *ThreadPool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewDefaultThreadPool()
	})
	return defaultPool
}
