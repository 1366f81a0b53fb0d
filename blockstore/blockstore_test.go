// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/blockstore"
	"github.com/bitmark-inc/vaultd/blockstore/storetest"
	"github.com/bitmark-inc/vaultd/fault"
)

func TestCheckRange(t *testing.T) {
	items := []struct {
		size   int
		offset int
		length int
		ok     bool
	}{
		{16, 0, 16, true},
		{16, 0, 0, true},
		{16, 16, 0, true},
		{16, 15, 1, true},
		{16, 15, 2, false},
		{16, 17, 0, false},
		{16, -1, 1, false},
		{16, 0, -1, false},
		{16, 0, 17, false},
	}

	for i, item := range items {
		err := blockstore.CheckRange(item.size, item.offset, item.length)
		if item.ok {
			assert.Nilf(t, err, "%d: unexpected error", i)
		} else {
			assert.Equalf(t, fault.ErrOutOfRange, err, "%d: expected range error", i)
		}
	}
}

func TestMemoryContract(t *testing.T) {
	storetest.RunContract(t, blockstore.NewMemory(512, 64))
}

func TestMemoryUnwrittenIsZero(t *testing.T) {
	m := blockstore.NewMemory(128, 32)

	buffer := storetest.Pattern(128, 1)
	err := m.ReadBlock(99, buffer, 0)
	assert.Nil(t, err, "read error")
	assert.True(t, blockstore.IsZero(buffer), "unwritten block not zero")
	assert.Equal(t, 0, m.Count(), "read must not allocate")
}

func TestParityContract(t *testing.T) {
	storetest.RunContract(t, blockstore.NewParity(blockstore.NewMemory(512, 64)))
}

func TestParityDetectsCorruption(t *testing.T) {
	m := blockstore.NewMemory(64, 16)
	p := blockstore.NewParity(m)
	assert.Equal(t, 63, p.BlockSize(), "wrong block size")

	err := p.WriteBlock(3, storetest.Pattern(63, 2), 0)
	assert.Nil(t, err, "write error")

	raw := make([]byte, 1)
	err = m.ReadBlock(3, raw, 10)
	assert.Nil(t, err, "raw read error")
	raw[0] ^= 0x40
	err = m.WriteBlock(3, raw, 10)
	assert.Nil(t, err, "raw write error")

	err = p.ReadBlock(3, make([]byte, 4), 50)
	assert.Equal(t, fault.ErrIntegrity, err, "corruption not detected")
}
