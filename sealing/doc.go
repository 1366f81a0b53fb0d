// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sealing - authenticated encryption of a block store
//
// Every block and the superblock is sealed with NaCl secretbox
// (XSalsa20 + Poly1305) under a key derived from the master secret,
// a per-format random salt, a domain tag and the block address, so
// sealed data moved to another address never opens.
//
// Wrapped block layout:
//
//   [counter: 8 bytes big endian][secretbox: plaintext ++ 16 byte tag]
//
// Wrapped superblock layout:
//
//   [salt: 16 bytes][counter: 8 bytes big endian][secretbox: plaintext ++ 16 byte tag]
//
// The counter advances on every write and is part of the nonce.  A
// write always opens and verifies the existing block first, so the
// counter it advances from is authenticated; the first write to an
// address after the process starts advances by a random distance.  The
// highest counter seen for each address is held in memory, so an older
// but validly sealed block replayed at its address is reported as a
// rollback.  Addresses not yet seen since the process started are
// accepted on first read.
//
// A wrapped block that is entirely zero has never been written and
// reads as zeros.
package sealing
