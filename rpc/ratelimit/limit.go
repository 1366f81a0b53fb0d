// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/vaultd/fault"
)

// New - a limiter allowing rate events per second, zero rate means no limit
func New(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Limit - wait for a single event
func Limit(limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.ErrRateLimiting
	}
	time.Sleep(r.Delay())
	return nil
}

// LimitN - wait for count events
//
// an invalid count is still charged as a single event
func LimitN(limiter *rate.Limiter, count int, maximumCount int) error {
	if count <= 0 || count > maximumCount {

		r := limiter.Reserve()
		if !r.OK() {
			return fault.ErrRateLimiting
		}
		time.Sleep(r.Delay())

		return fault.ErrInvalidCount
	}

	r := limiter.ReserveN(time.Now(), count)
	if !r.OK() {
		return fault.ErrRateLimiting
	}
	time.Sleep(r.Delay())

	return nil
}
