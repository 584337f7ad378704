// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// Trace is the external observability seam: a pool or spawn/await call
// reports named events through it without depending on any particular
// logging or metrics library. Kept dependency-free and no-op by default
// so it costs nothing when unused.
type Trace interface {
	// Event is called with a short, stable name at points of interest:
	// "enqueue", "notify_one", "worker_start",
	// "worker_end", "steal_hit", "spawn", "await", "inversion".
	Event(name string, fields ...any)
}

type noopTrace struct{}

func (noopTrace) Event(string, ...any) {}

// defaultTrace is swapped out via SetTrace; nil checks are avoided by
// always keeping it a valid, possibly no-op, Trace.
var defaultTrace Trace = noopTrace{}

// SetTrace installs t as the process-wide trace sink used by every
// ThreadPool created afterwards, including the default pool if it has not
// been created yet. A pool copies the sink when it is constructed, so
// pools that already exist keep theirs. Passing nil restores the no-op
// sink.
func SetTrace(t Trace) {
	if t == nil {
		t = noopTrace{}
	}
	defaultTrace = t
}
