// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/counter"
)

// test incrementing/decrementing a counter
func TestCounter(t *testing.T) {

	var c1 counter.Counter

	assert.True(t, c1.IsZero(), "counter is not zero at start")

	for i := 0; i < 5; i += 1 {
		c1.Increment()
	}
	assert.Equal(t, uint64(5), c1.Uint64(), "after incrementing")

	c1.Decrement()
	assert.Equal(t, uint64(4), c1.Uint64(), "after decrementing")

	for i := 0; i < 4; i += 1 {
		c1.Decrement()
	}
	assert.True(t, c1.IsZero(), "counter did not return to zero")

	// check against underflow, i.e. twos complement -1
	c1.Decrement()
	assert.Equal(t, ^uint64(0), c1.Uint64(), "counter did not underflow")
}

func TestAcquire(t *testing.T) {
	var c counter.Counter

	assert.True(t, c.Acquire(2), "first")
	assert.True(t, c.Acquire(2), "second")
	assert.False(t, c.Acquire(2), "limit exceeded")
	assert.Equal(t, uint64(2), c.Uint64(), "count changed by refusal")

	c.Release()
	assert.True(t, c.Acquire(2), "after release")
	assert.False(t, c.Acquire(0), "zero limit")
}

func TestAcquireConcurrent(t *testing.T) {
	const limit = 10

	var c counter.Counter
	var wg sync.WaitGroup
	var mutex sync.Mutex
	acquired := 0

	for i := 0; i < 100; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Acquire(limit) {
				mutex.Lock()
				acquired += 1
				mutex.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, acquired, "acquired")
	assert.Equal(t, uint64(limit), c.Uint64(), "count")
}
