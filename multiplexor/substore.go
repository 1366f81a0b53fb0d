// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package multiplexor

import (
	"sync"

	"github.com/bitmark-inc/vaultd/blockstore"
)

// SubStore - one logical store, satisfies blockstore.BlockStore
type SubStore struct {
	sync.Mutex // serialises lazy allocation in this store

	m     *Multiplexor
	index uint64

	master      uint64
	masterKnown bool

	// logical block -> wrapped block, entries never change once set
	resolved map[uint64]uint64
}

func newSubStore(m *Multiplexor, index uint64) *SubStore {
	return &SubStore{
		m:        m,
		index:    index,
		resolved: make(map[uint64]uint64),
	}
}

// Index - position of this store in the multiplexor
func (s *SubStore) Index() uint64 {
	return s.index
}

// Format - zero the sub-superblock
func (s *SubStore) Format() error {
	return s.WriteSuperBlock(make([]byte, SubSuperBlockSize), 0)
}

// BlockSize - payload bytes of a data block
func (s *SubStore) BlockSize() int {
	return s.m.dataSize
}

// SuperBlockSize - bytes reserved at the end of the master block
func (s *SubStore) SuperBlockSize() int {
	return SubSuperBlockSize
}

// ReadBlock - read part of a logical block, allocating it if necessary
func (s *SubStore) ReadBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(s.m.dataSize, blockOffset, len(buffer)); nil != err {
		return err
	}
	block, err := s.dataBlock(blockNumber)
	if nil != err {
		return err
	}
	return s.m.wrapped.ReadBlock(block, buffer, blockOffset)
}

// WriteBlock - write part of a logical block, allocating it if necessary
func (s *SubStore) WriteBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(s.m.dataSize, blockOffset, len(buffer)); nil != err {
		return err
	}
	block, err := s.dataBlock(blockNumber)
	if nil != err {
		return err
	}
	return s.m.wrapped.WriteBlock(block, buffer, blockOffset)
}

// ReadSuperBlock - read part of the sub-superblock
func (s *SubStore) ReadSuperBlock(buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(SubSuperBlockSize, blockOffset, len(buffer)); nil != err {
		return err
	}
	master, err := s.masterBlock()
	if nil != err {
		return err
	}
	return s.m.wrapped.ReadBlock(master, buffer, s.superOffset()+blockOffset)
}

// WriteSuperBlock - write part of the sub-superblock
func (s *SubStore) WriteSuperBlock(buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(SubSuperBlockSize, blockOffset, len(buffer)); nil != err {
		return err
	}
	master, err := s.masterBlock()
	if nil != err {
		return err
	}
	return s.m.wrapped.WriteBlock(master, buffer, s.superOffset()+blockOffset)
}

func (s *SubStore) superOffset() int {
	return s.m.wrapped.BlockSize() - SubSuperBlockSize
}

func (s *SubStore) rootOffset() int {
	return s.m.wrapped.BlockSize() - (SubSuperBlockSize + pointerSize)
}

func (s *SubStore) masterBlock() (uint64, error) {
	s.Lock()
	defer s.Unlock()
	return s.masterBlockLocked()
}

func (s *SubStore) masterBlockLocked() (uint64, error) {
	if s.masterKnown {
		return s.master, nil
	}
	master, err := s.m.masterBlock(s.index)
	if nil != err {
		return 0, err
	}
	s.master = master
	s.masterKnown = true
	return master, nil
}

// resolve a logical block to a wrapped block
//
// walks from the data root down the chain of ancestors, allocating
// and linking any block whose pointer is still unallocated; the whole
// walk holds the store lock so a block is only ever allocated once
func (s *SubStore) dataBlock(blockNumber uint64) (uint64, error) {
	s.Lock()
	defer s.Unlock()

	if block, ok := s.resolved[blockNumber]; ok {
		return block, nil
	}

	// ancestors from blockNumber up to (but excluding) the nearest
	// one already resolved, or the root
	path := make([]uint64, 0, 16)
	n := blockNumber
	block := uint64(0)
	found := false
	for {
		if b, ok := s.resolved[n]; ok {
			block = b
			found = true
			break
		}
		if 0 == n {
			break
		}
		path = append(path, n)
		n = (n - 1) / dataPointers
	}

	if !found {
		root, err := s.dataRoot()
		if nil != err {
			return 0, err
		}
		block = root
		s.resolved[0] = root
	}

	for i := len(path) - 1; i >= 0; i -= 1 {
		child := path[i]
		offset := s.m.dataSize + int((child-1)%dataPointers)*pointerSize

		p, err := s.m.readPointer(block, offset)
		if nil != err {
			return 0, err
		}
		if Unallocated == p {
			p, err = s.m.allocate(s.m.dataTemplate)
			if nil != err {
				return 0, err
			}
			err = s.m.writePointer(block, offset, p)
			if nil != err {
				return 0, err
			}
			s.m.log.Debugf("store: %d  block: %d  allocated: %d", s.index, child, p)
		}
		s.resolved[child] = p
		block = p
	}

	return block, nil
}

// the root data block, allocated on first use
func (s *SubStore) dataRoot() (uint64, error) {
	master, err := s.masterBlockLocked()
	if nil != err {
		return 0, err
	}

	root, err := s.m.readPointer(master, s.rootOffset())
	if nil != err {
		return 0, err
	}
	if Unallocated != root {
		return root, nil
	}

	root, err = s.m.allocate(s.m.dataTemplate)
	if nil != err {
		return 0, err
	}
	err = s.m.writePointer(master, s.rootOffset(), root)
	if nil != err {
		return 0, err
	}
	s.m.log.Debugf("store: %d  data root allocated: %d", s.index, root)

	return root, nil
}
