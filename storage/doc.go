// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the physical block device
//
// maintain a LevelDB database holding one superblock and any number
// of fixed size blocks; this is the leaf of the storage stack and
// provides neither confidentiality nor integrity
//
// Notes:
// 1. ++           = concatenation of byte data
// 2. block number = big endian uint64 (8 bytes)
//
// Records:
//
//   B ++ block number          - ordinary block
//                                data: BlockSize bytes
//
//   0x00 ++ "SUPER"            - superblock
//                                data: SuperBlockSize bytes
//
//   0x00 ++ "VERSION"          - database version
//                                data: big endian uint32
//
// A block with no record reads as zeros.
package storage
