// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockstore - the block store contract
//
// A block store is one superblock plus an unbounded sequence of
// zero-indexed fixed size blocks.  Every layer of the storage stack
// (physical device, sealing, multiplexed sub-stores, parity) is a
// BlockStore wrapping another BlockStore.
//
// Reads and writes take a byte slice; its length is the number of
// bytes transferred starting at the given offset within the block.
// An offset or length outside the block fails with a fault.RangeError,
// detected tampering fails with a fault.IntegrityError and the two are
// never merged.
package blockstore
