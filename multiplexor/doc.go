// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package multiplexor - many logical block stores on one block store
//
// Wrapped superblock trailer:
//
//   [... unused ...][number of stores: 8][first free block: 8]
//
// Master block, one per logical store (store 0 is always block 0):
//
//   [master pointers: M x 8][... unused ...][data root: 8][sub-superblock: 64]
//
// Data block, one per logical block of a store:
//
//   [payload: BlockSize-32][data pointers: 4 x 8]
//
// Pointers are little endian; an unallocated pointer has every bit
// set.  Store n>0 is linked from slot (n-1) mod M of the master block
// of store (n-1) div M, and logical block n>0 of a store is linked
// from slot (n-1) mod 4 of its logical block (n-1) div 4, so both trees
// are walked downward from their roots.  Blocks are allocated from a
// monotonic counter and are never freed.
package multiplexor
