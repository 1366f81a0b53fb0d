// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockstore

import (
	"sync"

	"github.com/bitmark-inc/vaultd/fault"
)

// ParityStore - reserves the last byte of every wrapped block for the
// xor of the other bytes and checks it on every read
//
// an all zero block has correct parity so format needs no extra work;
// the superblock is passed through unchecked
type ParityStore struct {
	sync.Mutex
	wrapped BlockStore
}

// NewParity - wrap a store with a parity check
func NewParity(wrapped BlockStore) *ParityStore {
	return &ParityStore{
		wrapped: wrapped,
	}
}

// Format - format the wrapped store
func (p *ParityStore) Format() error {
	return p.wrapped.Format()
}

// BlockSize - one less than the wrapped size
func (p *ParityStore) BlockSize() int {
	return p.wrapped.BlockSize() - 1
}

// SuperBlockSize - unchanged
func (p *ParityStore) SuperBlockSize() int {
	return p.wrapped.SuperBlockSize()
}

// ReadBlock - read and verify the parity of the whole block
func (p *ParityStore) ReadBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	size := p.BlockSize()
	if err := CheckRange(size, blockOffset, len(buffer)); nil != err {
		return err
	}

	p.Lock()
	defer p.Unlock()

	full := make([]byte, size+1)
	err := p.wrapped.ReadBlock(blockNumber, full, 0)
	if nil != err {
		return err
	}
	if parity(full[:size]) != full[size] {
		return fault.ErrIntegrity
	}
	copy(buffer, full[blockOffset:])
	return nil
}

// WriteBlock - update the block and its parity byte in one wrapped write
func (p *ParityStore) WriteBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	size := p.BlockSize()
	if err := CheckRange(size, blockOffset, len(buffer)); nil != err {
		return err
	}

	p.Lock()
	defer p.Unlock()

	full := make([]byte, size+1)
	err := p.wrapped.ReadBlock(blockNumber, full, 0)
	if nil != err {
		return err
	}
	copy(full[blockOffset:], buffer)
	full[size] = parity(full[:size])
	return p.wrapped.WriteBlock(blockNumber, full, 0)
}

// ReadSuperBlock - pass through
func (p *ParityStore) ReadSuperBlock(buffer []byte, blockOffset int) error {
	return p.wrapped.ReadSuperBlock(buffer, blockOffset)
}

// WriteSuperBlock - pass through
func (p *ParityStore) WriteSuperBlock(buffer []byte, blockOffset int) error {
	return p.wrapped.WriteSuperBlock(buffer, blockOffset)
}

func parity(buffer []byte) byte {
	b := byte(0)
	for _, c := range buffer {
		b ^= c
	}
	return b
}
