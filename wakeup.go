// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import "sync/atomic"

// Single-shot park/notify. Go exposes no portable address-based
// wait/wake primitive to user code, so sleepHelper parks on a channel
// instead of a futex word, with the same contract: one waiter, any
// number of notifiers, idempotent after invalidation, spurious wakeups
// tolerated.

// wakeupToken is a handle bound to one sleepHelper. notify is idempotent
// and safe to call from any goroutine, any number of times, even after
// invalidate.
type wakeupToken struct {
	h *sleepHelper
}

// sleepHelper backs exactly one park/notify cycle. Workers construct a
// new sleepHelper each time they are about to sleep (see pool.go), mint a
// token, and block in sleep() until notified; their own wake-up path then
// invalidates the token.
type sleepHelper struct {
	notified atomic.Bool
	wake     chan struct{}
}

func newSleepHelper() *sleepHelper {
	return &sleepHelper{wake: make(chan struct{})}
}

// getToken returns a token bound to h.
func getToken(h *sleepHelper) wakeupToken {
	return wakeupToken{h: h}
}

// notify wakes h's sleeper. Idempotent: calling it more than once, or
// after invalidate, is a safe no-op — the first call alone performs the
// close, guarded by notified so spurious double-wakes never panic on a
// closed channel.
func (t wakeupToken) notify() {
	if t.h == nil {
		return
	}
	if t.h.notified.CompareAndSwap(false, true) {
		close(t.h.wake)
	}
}

// invalidate marks the token as spent; subsequent notify calls become
// no-ops. The worker's sleep in pool.go calls this once sleepHelper.sleep
// returns, so a late notify
// racing with the next sleep cycle never wakes the wrong cycle.
func (t wakeupToken) invalidate() {
	if t.h == nil {
		return
	}
	t.h.notified.CompareAndSwap(false, true)
}

// sleep parks the calling goroutine until notify is called on a token
// bound to h (returning at once if that already happened). Invalidating
// h does not wake it: a helper invalidated before any notify leaves sleep
// blocked. Spurious wakeups are
// permitted by the contract; callers re-check their own state after
// sleep returns (pool.go's worker loop does, via num_tasks/stop checks).
func (h *sleepHelper) sleep() {
	<-h.wake
}
