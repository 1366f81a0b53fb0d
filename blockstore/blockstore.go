// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockstore

//go:generate mockgen -destination=../mocks/blockstore.go -package=mocks github.com/bitmark-inc/vaultd/blockstore BlockStore

import (
	"github.com/bitmark-inc/vaultd/fault"
)

// BlockStore - the interface satisfied by every storage layer
type BlockStore interface {
	// Format - reset the superblock to all zero bytes, nothing is
	// guaranteed about ordinary block contents afterwards
	Format() error

	// BlockSize - bytes in each ordinary block
	BlockSize() int

	// SuperBlockSize - bytes in the superblock
	SuperBlockSize() int

	ReadBlock(blockNumber uint64, buffer []byte, blockOffset int) error
	WriteBlock(blockNumber uint64, buffer []byte, blockOffset int) error

	ReadSuperBlock(buffer []byte, blockOffset int) error
	WriteSuperBlock(buffer []byte, blockOffset int) error
}

// CheckRange - validate an offset and length against a block size
func CheckRange(size int, blockOffset int, length int) error {
	if blockOffset < 0 || length < 0 || blockOffset > size || length > size-blockOffset {
		return fault.ErrOutOfRange
	}
	return nil
}

// IsZero - true if every byte is zero
func IsZero(buffer []byte) bool {
	for _, b := range buffer {
		if 0 != b {
			return false
		}
	}
	return true
}
