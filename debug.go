// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build concore_debug

package concore

// debugAudit walks a WorkLine after every mutation and panics if the
// intrusive list's invariants (prevLink points back to the node, every
// linked node's workerData is this line) have been broken. Opt-in via
// the concore_debug build tag rather than compiled out by a release
// flag.
var debugAudit = func(w *WorkLine) {
	if !w.checkInvariant() {
		panic("concore: work line invariant violated")
	}
}
