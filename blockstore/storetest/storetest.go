// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storetest - checks common to every block store implementation
package storetest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/blockstore"
	"github.com/bitmark-inc/vaultd/fault"
)

// Pattern - deterministic non-zero test data
func Pattern(length int, seed int) []byte {
	b := make([]byte, length)
	for i := range b {
		b[i] = byte(seed*31 + i*7 + 1)
	}
	return b
}

// RunContract - run every contract check against a freshly created store
//
// the store is formatted before the checks start
func RunContract(t *testing.T, s blockstore.BlockStore) {
	err := s.Format()
	assert.Nil(t, err, "format error")

	t.Run("format", func(t *testing.T) { CheckFormat(t, s) })
	t.Run("round trip", func(t *testing.T) { CheckRoundTrip(t, s) })
	t.Run("partial", func(t *testing.T) { CheckPartial(t, s) })
	t.Run("superblock", func(t *testing.T) { CheckSuperBlock(t, s) })
	t.Run("range", func(t *testing.T) { CheckRange(t, s) })
}

// CheckFormat - after format the superblock reads as zeros
func CheckFormat(t *testing.T, s blockstore.BlockStore) {
	size := s.SuperBlockSize()

	err := s.WriteSuperBlock(Pattern(size, 3), 0)
	assert.Nil(t, err, "superblock write error")

	err = s.Format()
	assert.Nil(t, err, "format error")

	buffer := Pattern(size, 9)
	err = s.ReadSuperBlock(buffer, 0)
	assert.Nil(t, err, "superblock read error")
	assert.Equal(t, make([]byte, size), buffer, "superblock not zero after format")
}

// CheckRoundTrip - full block writes read back unchanged
func CheckRoundTrip(t *testing.T, s blockstore.BlockStore) {
	size := s.BlockSize()
	numbers := []uint64{0, 1, 2, 7, 100, 4096}

	for i, n := range numbers {
		err := s.WriteBlock(n, Pattern(size, i), 0)
		assert.Nilf(t, err, "block: %d write error", n)
	}
	for i, n := range numbers {
		buffer := make([]byte, size)
		err := s.ReadBlock(n, buffer, 0)
		assert.Nilf(t, err, "block: %d read error", n)
		assert.Truef(t, bytes.Equal(Pattern(size, i), buffer), "block: %d data mismatch", n)
	}
}

// CheckPartial - sub-block writes only change the addressed bytes
func CheckPartial(t *testing.T, s blockstore.BlockStore) {
	size := s.BlockSize()
	const n = 11

	expected := Pattern(size, 5)
	err := s.WriteBlock(n, expected, 0)
	assert.Nil(t, err, "write error")

	middle := Pattern(size/3, 6)
	offset := size / 4
	err = s.WriteBlock(n, middle, offset)
	assert.Nil(t, err, "partial write error")
	copy(expected[offset:], middle)

	buffer := make([]byte, size)
	err = s.ReadBlock(n, buffer, 0)
	assert.Nil(t, err, "read error")
	assert.Equal(t, expected, buffer, "partial write corrupted block")

	tail := make([]byte, 17)
	err = s.ReadBlock(n, tail, size-17)
	assert.Nil(t, err, "partial read error")
	assert.Equal(t, expected[size-17:], tail, "partial read mismatch")

	err = s.WriteBlock(n, []byte{}, size)
	assert.Nil(t, err, "zero length write at end error")
}

// CheckSuperBlock - superblock partial round trip
func CheckSuperBlock(t *testing.T, s blockstore.BlockStore) {
	size := s.SuperBlockSize()
	data := Pattern(size/2, 8)

	err := s.WriteSuperBlock(data, size-len(data))
	assert.Nil(t, err, "superblock write error")

	buffer := make([]byte, len(data))
	err = s.ReadSuperBlock(buffer, size-len(data))
	assert.Nil(t, err, "superblock read error")
	assert.Equal(t, data, buffer, "superblock data mismatch")
}

// CheckRange - out of range access is a range error and never an integrity error
func CheckRange(t *testing.T, s blockstore.BlockStore) {
	size := s.BlockSize()
	superSize := s.SuperBlockSize()

	err := s.WriteBlock(1, make([]byte, size+1), 0)
	assert.Equal(t, fault.ErrOutOfRange, err, "oversize write")

	err = s.ReadBlock(1, make([]byte, 2), size-1)
	assert.Equal(t, fault.ErrOutOfRange, err, "read past end")

	err = s.ReadBlock(1, make([]byte, 1), -1)
	assert.Equal(t, fault.ErrOutOfRange, err, "negative offset")

	err = s.WriteSuperBlock(make([]byte, 1), superSize)
	assert.Equal(t, fault.ErrOutOfRange, err, "superblock write past end")

	err = s.ReadSuperBlock(make([]byte, superSize+1), 0)
	assert.Equal(t, fault.ErrOutOfRange, err, "oversize superblock read")

	assert.True(t, fault.IsErrRange(err), "not a range error")
	assert.False(t, fault.IsErrIntegrity(err), "range error reported as integrity")
}
