// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// The storage layers return these values unchanged so that a caller
// can always tell a range (caller) error from an integrity (tamper)
// error, and both from an authorisation failure.
package fault
