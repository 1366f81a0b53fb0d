// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - an atomic count of active sessions or requests
package counter

import (
	"sync/atomic"
)

// Counter - a 64 bit unsigned count safe for concurrent use
type Counter uint64

// Increment - add 1 to a counter, returns new value
func (ic *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(ic), 1)
}

// Decrement - subtract 1 from a counter, returns new value
func (ic *Counter) Decrement() uint64 {
	return atomic.AddUint64((*uint64)(ic), ^uint64(0))
}

// Acquire - increment only if the result would not exceed limit
//
// returns false and leaves the count alone when the limit is reached
func (ic *Counter) Acquire(limit uint64) bool {
	for {
		current := atomic.LoadUint64((*uint64)(ic))
		if current >= limit {
			return false
		}
		if atomic.CompareAndSwapUint64((*uint64)(ic), current, current+1) {
			return true
		}
	}
}

// Release - undo a successful Acquire
func (ic *Counter) Release() {
	ic.Decrement()
}

// Uint64 - returns current value
func (ic *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}

// IsZero - check if zero
func (ic *Counter) IsZero() bool {
	return 0 == ic.Uint64()
}
