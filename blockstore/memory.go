// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockstore

import (
	"sync"
)

// MemoryStore - a volatile leaf block store
//
// blocks that were never written read as zeros
type MemoryStore struct {
	sync.RWMutex
	blockSize      int
	superBlockSize int
	blocks         map[uint64][]byte
	superBlock     []byte
}

// NewMemory - create an empty in-memory store
func NewMemory(blockSize int, superBlockSize int) *MemoryStore {
	return &MemoryStore{
		blockSize:      blockSize,
		superBlockSize: superBlockSize,
		blocks:         make(map[uint64][]byte),
		superBlock:     make([]byte, superBlockSize),
	}
}

// Format - discard all blocks and zero the superblock
func (m *MemoryStore) Format() error {
	m.Lock()
	m.blocks = make(map[uint64][]byte)
	m.superBlock = make([]byte, m.superBlockSize)
	m.Unlock()
	return nil
}

// BlockSize - bytes per block
func (m *MemoryStore) BlockSize() int {
	return m.blockSize
}

// SuperBlockSize - bytes in superblock
func (m *MemoryStore) SuperBlockSize() int {
	return m.superBlockSize
}

// ReadBlock - copy out part of a block
func (m *MemoryStore) ReadBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	if err := CheckRange(m.blockSize, blockOffset, len(buffer)); nil != err {
		return err
	}

	m.RLock()
	defer m.RUnlock()

	block, ok := m.blocks[blockNumber]
	if !ok {
		for i := range buffer {
			buffer[i] = 0
		}
		return nil
	}
	copy(buffer, block[blockOffset:])
	return nil
}

// WriteBlock - copy data into part of a block
func (m *MemoryStore) WriteBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	if err := CheckRange(m.blockSize, blockOffset, len(buffer)); nil != err {
		return err
	}

	m.Lock()
	defer m.Unlock()

	block, ok := m.blocks[blockNumber]
	if !ok {
		block = make([]byte, m.blockSize)
		m.blocks[blockNumber] = block
	}
	copy(block[blockOffset:], buffer)
	return nil
}

// ReadSuperBlock - copy out part of the superblock
func (m *MemoryStore) ReadSuperBlock(buffer []byte, blockOffset int) error {
	if err := CheckRange(m.superBlockSize, blockOffset, len(buffer)); nil != err {
		return err
	}

	m.RLock()
	copy(buffer, m.superBlock[blockOffset:])
	m.RUnlock()
	return nil
}

// WriteSuperBlock - copy data into part of the superblock
func (m *MemoryStore) WriteSuperBlock(buffer []byte, blockOffset int) error {
	if err := CheckRange(m.superBlockSize, blockOffset, len(buffer)); nil != err {
		return err
	}

	m.Lock()
	copy(m.superBlock[blockOffset:], buffer)
	m.Unlock()
	return nil
}

// Count - number of blocks that have been written
func (m *MemoryStore) Count() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.blocks)
}
