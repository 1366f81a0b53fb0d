// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// failed login counts per user name, each expiring after the window
type throttle struct {
	sync.RWMutex
	limit    int
	window   time.Duration
	failures *cache.Cache
}

func newThrottle(limit int, window time.Duration) *throttle {
	return &throttle{
		limit:    limit,
		window:   window,
		failures: cache.New(window, 2*window),
	}
}

// a limit of zero disables throttling
func (t *throttle) set(limit int, window time.Duration) {
	t.Lock()
	t.limit = limit
	t.window = window
	t.Unlock()
}

func (t *throttle) blocked(name string) bool {
	t.RLock()
	limit := t.limit
	t.RUnlock()

	if limit <= 0 {
		return false
	}
	n, ok := t.failures.Get(name)
	return ok && n.(int) >= limit
}

func (t *throttle) failed(name string) {
	t.RLock()
	window := t.window
	t.RUnlock()

	_, err := t.failures.IncrementInt(name, 1)
	if nil != err {
		t.failures.Set(name, 1, window)
	}
}

func (t *throttle) succeeded(name string) {
	t.failures.Delete(name)
}
