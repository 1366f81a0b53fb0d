// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package arraystore - a block store seen as one flat byte array
package arraystore

import (
	"github.com/bitmark-inc/vaultd/blockstore"
	"github.com/bitmark-inc/vaultd/fault"
)

// ArrayStore - splits byte ranges into block operations
type ArrayStore struct {
	store     blockstore.BlockStore
	blockSize int64
}

type blockOperation func(blockNumber uint64, buffer []byte, blockOffset int) error

// New - create a byte array view of a block store
func New(store blockstore.BlockStore) *ArrayStore {
	return &ArrayStore{
		store:     store,
		blockSize: int64(store.BlockSize()),
	}
}

// Store - the underlying block store
func (a *ArrayStore) Store() blockstore.BlockStore {
	return a.store
}

// Write - store the whole buffer starting at a byte offset
func (a *ArrayStore) Write(buffer []byte, storageOffset int64) error {
	return a.split(buffer, storageOffset, a.store.WriteBlock)
}

// Read - fill the whole buffer starting at a byte offset
func (a *ArrayStore) Read(buffer []byte, storageOffset int64) error {
	return a.split(buffer, storageOffset, a.store.ReadBlock)
}

// Span - number of blocks touched by a byte range
func (a *ArrayStore) Span(storageOffset int64, length int) int {
	if length <= 0 || storageOffset < 0 {
		return 0
	}
	first := storageOffset / a.blockSize
	last := (storageOffset + int64(length) - 1) / a.blockSize
	return int(last-first) + 1
}

// errors from the block store are returned unchanged
func (a *ArrayStore) split(buffer []byte, storageOffset int64, operation blockOperation) error {
	if storageOffset < 0 {
		return fault.ErrOutOfRange
	}

	for len(buffer) > 0 {
		blockNumber := storageOffset / a.blockSize
		blockOffset := storageOffset % a.blockSize

		n := a.blockSize - blockOffset
		if int64(len(buffer)) < n {
			n = int64(len(buffer))
		}

		err := operation(uint64(blockNumber), buffer[:n], int(blockOffset))
		if nil != err {
			return err
		}

		buffer = buffer[n:]
		storageOffset += n
	}
	return nil
}
