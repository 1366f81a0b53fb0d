// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package multiplexor

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/blockstore"
	"github.com/bitmark-inc/vaultd/fault"
)

// layout constants
const (
	SubSuperBlockSize = 64
	pointerSize       = 8
	dataPointers      = 4
	trailerSize       = 16
)

// Unallocated - pointer value never produced by the allocator
const Unallocated = uint64(math.MaxUint64)

// Multiplexor - allocator and directory of logical stores
type Multiplexor struct {
	sync.Mutex // serialises store creation

	log     *logger.L
	wrapped blockstore.BlockStore

	masterPointers int
	dataSize       int
	masterTemplate []byte
	dataTemplate   []byte

	stores []*SubStore

	// allocator state, separate so sub-stores can allocate
	// while a store is being created
	allocator struct {
		sync.Mutex
		firstFree uint64
	}
}

// New - open a multiplexor on a wrapped store
//
// the wrapped store must be freshly formatted or previously used by a
// multiplexor; a formatted store contains no logical stores
func New(wrapped blockstore.BlockStore) (*Multiplexor, error) {
	blockSize := wrapped.BlockSize()
	masterPointers := (blockSize - (SubSuperBlockSize + pointerSize)) / pointerSize
	dataSize := blockSize - dataPointers*pointerSize
	if masterPointers < 1 || dataSize < 1 || wrapped.SuperBlockSize() < trailerSize {
		return nil, fault.ErrInvalidLength
	}

	trailer := make([]byte, trailerSize)
	err := wrapped.ReadSuperBlock(trailer, wrapped.SuperBlockSize()-trailerSize)
	if nil != err {
		return nil, err
	}
	numStores := binary.LittleEndian.Uint64(trailer[0:])
	firstFree := binary.LittleEndian.Uint64(trailer[8:])

	if 0 == numStores {
		firstFree = 0
	} else if firstFree < numStores {
		return nil, fault.ErrIntegrity
	}

	m := &Multiplexor{
		log:            logger.New("multiplexor"),
		wrapped:        wrapped,
		masterPointers: masterPointers,
		dataSize:       dataSize,
		masterTemplate: makeMasterTemplate(blockSize, masterPointers),
		dataTemplate:   makeDataTemplate(blockSize),
		stores:         make([]*SubStore, numStores),
	}
	m.allocator.firstFree = firstFree

	for i := range m.stores {
		m.stores[i] = newSubStore(m, uint64(i))
	}

	m.log.Infof("stores: %d  first free block: %d  master fan out: %d  data block size: %d", numStores, firstFree, masterPointers, dataSize)

	return m, nil
}

// NumSubStores - number of logical stores created so far
func (m *Multiplexor) NumSubStores() uint64 {
	m.Lock()
	defer m.Unlock()
	return uint64(len(m.stores))
}

// AllocatedBlocks - number of wrapped blocks in use
func (m *Multiplexor) AllocatedBlocks() uint64 {
	m.allocator.Lock()
	defer m.allocator.Unlock()
	return m.allocator.firstFree
}

// GetSubStore - handle of an existing store
func (m *Multiplexor) GetSubStore(index uint64) (*SubStore, error) {
	m.Lock()
	defer m.Unlock()

	if index >= uint64(len(m.stores)) {
		return nil, fault.ErrNoSuchStore
	}
	return m.stores[index], nil
}

// NewSubStore - create, link and return a new store
//
// the new store is not formatted
func (m *Multiplexor) NewSubStore() (*SubStore, error) {
	m.Lock()
	defer m.Unlock()

	index := uint64(len(m.stores))

	master, err := m.allocate(m.masterTemplate)
	if nil != err {
		return nil, err
	}

	if 0 == index {
		if 0 != master {
			m.log.Criticalf("store 0 master block: %d is not block 0", master)
			return nil, fault.ErrIntegrity
		}
	} else {
		slot := int((index - 1) % uint64(m.masterPointers))
		parent, err := m.masterBlock((index - 1) / uint64(m.masterPointers))
		if nil != err {
			return nil, err
		}
		err = m.writePointer(parent, slot*pointerSize, master)
		if nil != err {
			return nil, err
		}
	}

	count := make([]byte, 8)
	binary.LittleEndian.PutUint64(count, index+1)
	err = m.wrapped.WriteSuperBlock(count, m.wrapped.SuperBlockSize()-trailerSize)
	if nil != err {
		return nil, err
	}

	s := newSubStore(m, index)
	s.master = master
	s.masterKnown = true
	m.stores = append(m.stores, s)

	m.log.Debugf("new store: %d  master block: %d", index, master)

	return s, nil
}

// allocate the next block and fill it with a template
func (m *Multiplexor) allocate(template []byte) (uint64, error) {
	m.allocator.Lock()
	defer m.allocator.Unlock()

	n := m.allocator.firstFree
	if Unallocated == n+1 {
		return 0, fault.ErrOutOfRange
	}

	next := make([]byte, 8)
	binary.LittleEndian.PutUint64(next, n+1)
	err := m.wrapped.WriteSuperBlock(next, m.wrapped.SuperBlockSize()-8)
	if nil != err {
		return 0, err
	}
	m.allocator.firstFree = n + 1

	err = m.wrapped.WriteBlock(n, template, 0)
	if nil != err {
		return 0, err
	}
	return n, nil
}

// resolve the master block of a store by walking down from block 0
func (m *Multiplexor) masterBlock(index uint64) (uint64, error) {
	fan := uint64(m.masterPointers)

	slots := make([]int, 0, 8)
	for n := index; 0 != n; n = (n - 1) / fan {
		slots = append(slots, int((n-1)%fan))
	}

	block := uint64(0)
	for i := len(slots) - 1; i >= 0; i -= 1 {
		p, err := m.readPointer(block, slots[i]*pointerSize)
		if nil != err {
			return 0, err
		}
		if Unallocated == p {
			m.log.Errorf("store: %d  unlinked master pointer in block: %d", index, block)
			return 0, fault.ErrIntegrity
		}
		block = p
	}
	return block, nil
}

func (m *Multiplexor) readPointer(block uint64, offset int) (uint64, error) {
	buffer := make([]byte, pointerSize)
	err := m.wrapped.ReadBlock(block, buffer, offset)
	if nil != err {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buffer), nil
}

func (m *Multiplexor) writePointer(block uint64, offset int, pointer uint64) error {
	buffer := make([]byte, pointerSize)
	binary.LittleEndian.PutUint64(buffer, pointer)
	return m.wrapped.WriteBlock(block, buffer, offset)
}

func makeMasterTemplate(blockSize int, masterPointers int) []byte {
	b := make([]byte, blockSize)
	for i := 0; i < masterPointers*pointerSize; i += 1 {
		b[i] = 0xff
	}
	root := blockSize - (SubSuperBlockSize + pointerSize)
	for i := root; i < root+pointerSize; i += 1 {
		b[i] = 0xff
	}
	return b
}

func makeDataTemplate(blockSize int) []byte {
	b := make([]byte, blockSize)
	for i := blockSize - dataPointers*pointerSize; i < blockSize; i += 1 {
		b[i] = 0xff
	}
	return b
}
