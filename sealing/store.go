// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sealing

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/blockstore"
	"github.com/bitmark-inc/vaultd/fault"
)

const (
	blockOverhead = counterSize + secretbox.Overhead
	superOverhead = saltSize + blockOverhead
	stripeCount   = 64
	jumpSize      = 4
)

// Store - a block store that seals everything written to a wrapped store
type Store struct {
	log     *logger.L
	wrapped blockstore.BlockStore
	secret  []byte
	random  io.Reader

	// serialise read-modify-reseal per address
	stripes    [stripeCount]sync.Mutex
	superLock  sync.Mutex
	formatLock sync.RWMutex

	// highest counters seen, protected by the mutex
	fresh struct {
		sync.Mutex
		salt      []byte
		blocks    map[uint64]uint64
		super     uint64
		superSeen bool
	}
}

// New - wrap a store
//
// the salt is taken from the wrapped superblock; a store that was
// never formatted has a zero salt until Format is called
func New(wrapped blockstore.BlockStore, secret []byte, random io.Reader) (*Store, error) {
	if SecretSize != len(secret) {
		return nil, fault.ErrInvalidSealingKey
	}
	if wrapped.BlockSize() <= blockOverhead || wrapped.SuperBlockSize() <= superOverhead {
		return nil, fault.ErrInvalidLength
	}

	salt := make([]byte, saltSize)
	err := wrapped.ReadSuperBlock(salt, 0)
	if nil != err {
		return nil, err
	}

	s := &Store{
		log:     logger.New("sealing"),
		wrapped: wrapped,
		secret:  append([]byte{}, secret...),
		random:  random,
	}
	s.fresh.salt = salt
	s.fresh.blocks = make(map[uint64]uint64)

	return s, nil
}

// Format - new salt, forget all counters and write a sealed zero superblock
func (s *Store) Format() error {
	s.formatLock.Lock()
	defer s.formatLock.Unlock()

	salt := make([]byte, saltSize)
	_, err := io.ReadFull(s.random, salt)
	if nil != err {
		return err
	}

	err = s.wrapped.Format()
	if nil != err {
		return err
	}

	s.fresh.Lock()
	s.fresh.salt = salt
	s.fresh.blocks = make(map[uint64]uint64)
	s.fresh.super = 0
	s.fresh.superSeen = true
	s.fresh.Unlock()

	s.log.Infof("formatted with salt: %x", salt)

	return s.sealSuper(make([]byte, s.SuperBlockSize()), 1)
}

// BlockSize - wrapped size less counter and tag
func (s *Store) BlockSize() int {
	return s.wrapped.BlockSize() - blockOverhead
}

// SuperBlockSize - wrapped size less salt, counter and tag
func (s *Store) SuperBlockSize() int {
	return s.wrapped.SuperBlockSize() - superOverhead
}

// ReadBlock - open and verify a block then copy out the requested range
func (s *Store) ReadBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(s.BlockSize(), blockOffset, len(buffer)); nil != err {
		return err
	}

	s.formatLock.RLock()
	defer s.formatLock.RUnlock()

	stripe := &s.stripes[blockNumber%stripeCount]
	stripe.Lock()
	defer stripe.Unlock()

	plaintext, _, err := s.openBlock(blockNumber)
	if nil != err {
		return err
	}
	copy(buffer, plaintext[blockOffset:])
	return nil
}

// WriteBlock - reseal a block with the new data and an advanced counter
func (s *Store) WriteBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	size := s.BlockSize()
	if err := blockstore.CheckRange(size, blockOffset, len(buffer)); nil != err {
		return err
	}

	s.formatLock.RLock()
	defer s.formatLock.RUnlock()

	stripe := &s.stripes[blockNumber%stripeCount]
	stripe.Lock()
	defer stripe.Unlock()

	s.fresh.Lock()
	_, seen := s.fresh.blocks[blockNumber]
	s.fresh.Unlock()

	// the counter always comes from a verified block
	plaintext, counter, err := s.openBlock(blockNumber)
	if nil != err {
		return err
	}
	copy(plaintext[blockOffset:], buffer)

	counter, err = s.advance(counter, seen)
	if nil != err {
		return err
	}

	salt := s.salt()
	sealed := make([]byte, counterSize, s.wrapped.BlockSize())
	binary.BigEndian.PutUint64(sealed, counter)
	sealed = secretbox.Seal(sealed, plaintext, makeNonce(domainBlock, blockNumber, counter), deriveKey(s.secret, salt, domainBlock, blockNumber))

	err = s.wrapped.WriteBlock(blockNumber, sealed, 0)
	if nil != err {
		return err
	}

	s.fresh.Lock()
	s.fresh.blocks[blockNumber] = counter
	s.fresh.Unlock()

	return nil
}

// ReadSuperBlock - open and verify the superblock
func (s *Store) ReadSuperBlock(buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(s.SuperBlockSize(), blockOffset, len(buffer)); nil != err {
		return err
	}

	s.formatLock.RLock()
	defer s.formatLock.RUnlock()

	s.superLock.Lock()
	defer s.superLock.Unlock()

	plaintext, _, err := s.openSuper()
	if nil != err {
		return err
	}
	copy(buffer, plaintext[blockOffset:])
	return nil
}

// WriteSuperBlock - reseal the superblock
func (s *Store) WriteSuperBlock(buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(s.SuperBlockSize(), blockOffset, len(buffer)); nil != err {
		return err
	}

	s.formatLock.RLock()
	defer s.formatLock.RUnlock()

	s.superLock.Lock()
	defer s.superLock.Unlock()

	s.fresh.Lock()
	seen := s.fresh.superSeen
	s.fresh.Unlock()

	plaintext, counter, err := s.openSuper()
	if nil != err {
		return err
	}
	copy(plaintext[blockOffset:], buffer)

	counter, err = s.advance(counter, seen)
	if nil != err {
		return err
	}

	return s.sealSuper(plaintext, counter)
}

func (s *Store) salt() []byte {
	s.fresh.Lock()
	defer s.fresh.Unlock()
	return s.fresh.salt
}

// next counter for a verified block
//
// the first write to an address by this process skips ahead a random
// distance, so an older sealed block put back while the process was
// down is not followed by a counter that was already used
func (s *Store) advance(counter uint64, seen bool) (uint64, error) {
	step := uint64(1)
	if !seen {
		jump := make([]byte, jumpSize)
		_, err := io.ReadFull(s.random, jump)
		if nil != err {
			return 0, err
		}
		step += uint64(binary.BigEndian.Uint32(jump))
	}
	if math.MaxUint64-step < counter {
		s.log.Errorf("counter: %d  exhausted", counter)
		return 0, fault.ErrIntegrity
	}
	return counter + step, nil
}

// read, verify and decrypt a block
func (s *Store) openBlock(blockNumber uint64) ([]byte, uint64, error) {
	raw := make([]byte, s.wrapped.BlockSize())
	err := s.wrapped.ReadBlock(blockNumber, raw, 0)
	if nil != err {
		return nil, 0, err
	}

	counter := binary.BigEndian.Uint64(raw[:counterSize])

	s.fresh.Lock()
	salt := s.fresh.salt
	known, seen := s.fresh.blocks[blockNumber]
	s.fresh.Unlock()

	if seen && counter < known {
		s.log.Warnf("block: %d  rollback: counter: %d < %d", blockNumber, counter, known)
		return nil, 0, fault.ErrRollback
	}

	if 0 == counter {
		if !blockstore.IsZero(raw[counterSize:]) {
			s.log.Warnf("block: %d  integrity failure: data without counter", blockNumber)
			return nil, 0, fault.ErrIntegrity
		}
		return make([]byte, s.BlockSize()), 0, nil
	}

	plaintext, ok := secretbox.Open(nil, raw[counterSize:], makeNonce(domainBlock, blockNumber, counter), deriveKey(s.secret, salt, domainBlock, blockNumber))
	if !ok {
		s.log.Warnf("block: %d  integrity failure at counter: %d", blockNumber, counter)
		return nil, 0, fault.ErrIntegrity
	}

	if !seen || counter > known {
		s.fresh.Lock()
		if counter > s.fresh.blocks[blockNumber] {
			s.fresh.blocks[blockNumber] = counter
		}
		s.fresh.Unlock()
	}

	return plaintext, counter, nil
}

// read, verify and decrypt the superblock
func (s *Store) openSuper() ([]byte, uint64, error) {
	raw := make([]byte, s.wrapped.SuperBlockSize())
	err := s.wrapped.ReadSuperBlock(raw, 0)
	if nil != err {
		return nil, 0, err
	}

	body := raw[saltSize:]
	counter := binary.BigEndian.Uint64(body[:counterSize])

	s.fresh.Lock()
	salt := s.fresh.salt
	known, seen := s.fresh.super, s.fresh.superSeen
	s.fresh.Unlock()

	if !bytes.Equal(salt, raw[:saltSize]) {
		s.log.Warnf("superblock integrity failure: salt: %x  expected: %x", raw[:saltSize], salt)
		return nil, 0, fault.ErrIntegrity
	}

	if seen && counter < known {
		s.log.Warnf("superblock rollback: counter: %d < %d", counter, known)
		return nil, 0, fault.ErrRollback
	}

	if 0 == counter {
		if !blockstore.IsZero(body[counterSize:]) {
			s.log.Warn("superblock integrity failure: data without counter")
			return nil, 0, fault.ErrIntegrity
		}
		return make([]byte, s.SuperBlockSize()), 0, nil
	}

	plaintext, ok := secretbox.Open(nil, body[counterSize:], makeNonce(domainSuper, 0, counter), deriveKey(s.secret, salt, domainSuper, 0))
	if !ok {
		s.log.Warnf("superblock integrity failure at counter: %d", counter)
		return nil, 0, fault.ErrIntegrity
	}

	s.fresh.Lock()
	if !s.fresh.superSeen || counter > s.fresh.super {
		s.fresh.super = counter
		s.fresh.superSeen = true
	}
	s.fresh.Unlock()

	return plaintext, counter, nil
}

// seal the superblock at a given counter, the salt is stored in clear
func (s *Store) sealSuper(plaintext []byte, counter uint64) error {
	salt := s.salt()

	sealed := make([]byte, saltSize+counterSize, s.wrapped.SuperBlockSize())
	copy(sealed, salt)
	binary.BigEndian.PutUint64(sealed[saltSize:], counter)
	sealed = secretbox.Seal(sealed, plaintext, makeNonce(domainSuper, 0, counter), deriveKey(s.secret, salt, domainSuper, 0))

	err := s.wrapped.WriteSuperBlock(sealed, 0)
	if nil != err {
		return err
	}

	s.fresh.Lock()
	s.fresh.super = counter
	s.fresh.superSeen = true
	s.fresh.Unlock()

	return nil
}
