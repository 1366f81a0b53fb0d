// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

// keep password hashing fast under test
func init() {
	hashContext.Iterations = 1
	hashContext.Memory = 1 << 10
}
