// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// Task is an intrusive doubly-linked list node, the unit of work a
// ThreadPool schedules. Invariant: workerData is nil iff the task is
// not currently linked into any WorkLine.
type Task struct {
	next       *Task
	prevLink   **Task // address of the pointer that points to this node
	workerData *WorkLine

	// fn is invoked by the worker loop with (this task, the index of the
	// work line it was popped from).
	fn func(t *Task, lineIndex int)
}

// NewTask wraps fn as a schedulable Task.
func NewTask(fn func(t *Task, lineIndex int)) *Task {
	return &Task{fn: fn}
}

// inLine reports whether t currently sits in some WorkLine.
func (t *Task) inLine() bool {
	return t.workerData != nil
}
