// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !concore_debug

package concore

// debugAudit is a no-op in production builds; see debug.go for the
// concore_debug build.
var debugAudit = func(*WorkLine) {}
