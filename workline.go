// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import "sync"

// WorkLine is one worker's task queue: a lock-guarded intrusive LIFO.
// Go has real pointers, so the prevLink "pointer to the pointer that
// points to me" trick gives O(1) unlink-by-address without needing an
// arena or index indirection.
type WorkLine struct {
	mu   sync.Mutex
	head *Task
}

// TryPush prepends t without blocking. Returns false if the line is
// currently locked by another operation (push, pop, or extract).
func (w *WorkLine) TryPush(t *Task) bool {
	if !w.mu.TryLock() {
		return false
	}
	w.pushLocked(t)
	w.mu.Unlock()
	debugAudit(w)
	return true
}

// Push prepends t, blocking until the line is available.
func (w *WorkLine) Push(t *Task) {
	w.mu.Lock()
	w.pushLocked(t)
	w.mu.Unlock()
	debugAudit(w)
}

func (w *WorkLine) pushLocked(t *Task) {
	t.workerData = w
	t.next = w.head
	if w.head != nil {
		w.head.prevLink = &t.next
	}
	t.prevLink = &w.head
	w.head = t
}

// TryPop removes and returns the head task without blocking, or nil if
// the line is empty or currently locked.
func (w *WorkLine) TryPop() *Task {
	if !w.mu.TryLock() {
		return nil
	}
	if w.head == nil {
		w.mu.Unlock()
		return nil
	}
	res := w.popLocked()
	w.mu.Unlock()
	debugAudit(w)
	return res
}

func (w *WorkLine) popLocked() *Task {
	res := w.head
	w.head = res.next
	if w.head != nil {
		w.head.prevLink = &w.head
	}
	res.next = nil
	res.prevLink = nil
	res.workerData = nil
	return res
}

// Extract removes t from the line in O(1) using prevLink, if t is
// currently linked here. Reports whether it was extracted.
func (w *WorkLine) Extract(t *Task) bool {
	w.mu.Lock()
	if t.workerData != w {
		w.mu.Unlock()
		return false
	}
	*t.prevLink = t.next
	if t.next != nil {
		t.next.prevLink = t.prevLink
	}
	t.workerData = nil
	t.prevLink = nil
	t.next = nil
	w.mu.Unlock()
	debugAudit(w)
	return true
}

// checkInvariant walks the chain asserting its two structural
// invariants: every reachable node's prevLink dereferences to itself,
// and every reachable node's workerData is this line. Used by tests and
// by the debug build tag in debug.go rather than on the hot path.
func (w *WorkLine) checkInvariant() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for cur := w.head; cur != nil; cur = cur.next {
		if cur.prevLink == nil || *cur.prevLink != cur {
			return false
		}
		if cur.workerData != w {
			return false
		}
	}
	return true
}
