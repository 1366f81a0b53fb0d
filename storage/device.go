// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/vaultd/blockstore"
	"github.com/bitmark-inc/vaultd/fault"
)

// fixed geometry of the device
const (
	BlockSize      = 4096
	SuperBlockSize = 256
)

const (
	blockPrefix = 'B'
)

var superBlockKey = []byte{0x00, 'S', 'U', 'P', 'E', 'R'}

// Device - a block store held in a LevelDB database
type Device struct {
	sync.Mutex // serialises read-modify-write
	db         *leveldb.DB
	readOnly   bool
}

// New - create a device on an already opened database
func New(db *leveldb.DB, readOnly bool) *Device {
	return &Device{
		db:       db,
		readOnly: readOnly,
	}
}

// block number as a database key
func blockKey(blockNumber uint64) []byte {
	key := make([]byte, 9)
	key[0] = blockPrefix
	binary.BigEndian.PutUint64(key[1:], blockNumber)
	return key
}

// Format - delete every block and write a zero superblock
func (d *Device) Format() error {
	if d.readOnly {
		return fault.ErrReadOnlyDevice
	}

	d.Lock()
	defer d.Unlock()

	batch := new(leveldb.Batch)
	iter := d.db.NewIterator(ldb_util.BytesPrefix([]byte{blockPrefix}), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	err := iter.Error()
	if nil != err {
		return err
	}

	batch.Put(superBlockKey, make([]byte, SuperBlockSize))
	return d.db.Write(batch, nil)
}

// BlockSize - bytes per block
func (d *Device) BlockSize() int {
	return BlockSize
}

// SuperBlockSize - bytes in superblock
func (d *Device) SuperBlockSize() int {
	return SuperBlockSize
}

// ReadBlock - read part of a block, missing blocks are zero
func (d *Device) ReadBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(BlockSize, blockOffset, len(buffer)); nil != err {
		return err
	}
	return d.read(blockKey(blockNumber), BlockSize, buffer, blockOffset)
}

// WriteBlock - write part of a block
func (d *Device) WriteBlock(blockNumber uint64, buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(BlockSize, blockOffset, len(buffer)); nil != err {
		return err
	}
	return d.write(blockKey(blockNumber), BlockSize, buffer, blockOffset)
}

// ReadSuperBlock - read part of the superblock
func (d *Device) ReadSuperBlock(buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(SuperBlockSize, blockOffset, len(buffer)); nil != err {
		return err
	}
	return d.read(superBlockKey, SuperBlockSize, buffer, blockOffset)
}

// WriteSuperBlock - write part of the superblock
func (d *Device) WriteSuperBlock(buffer []byte, blockOffset int) error {
	if err := blockstore.CheckRange(SuperBlockSize, blockOffset, len(buffer)); nil != err {
		return err
	}
	return d.write(superBlockKey, SuperBlockSize, buffer, blockOffset)
}

// Count - number of block records in the database
func (d *Device) Count() (uint64, error) {
	n := uint64(0)
	iter := d.db.NewIterator(ldb_util.BytesPrefix([]byte{blockPrefix}), nil)
	for iter.Next() {
		n += 1
	}
	iter.Release()
	return n, iter.Error()
}

func (d *Device) read(key []byte, size int, buffer []byte, offset int) error {
	value, err := d.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		for i := range buffer {
			buffer[i] = 0
		}
		return nil
	} else if nil != err {
		return err
	}
	if size != len(value) {
		return fault.ErrTruncatedBlock
	}
	copy(buffer, value[offset:])
	return nil
}

func (d *Device) write(key []byte, size int, buffer []byte, offset int) error {
	if d.readOnly {
		return fault.ErrReadOnlyDevice
	}

	d.Lock()
	defer d.Unlock()

	if 0 == offset && size == len(buffer) {
		return d.db.Put(key, buffer, nil)
	}

	value := make([]byte, size)
	err := d.read(key, size, value, 0)
	if nil != err {
		return err
	}
	copy(value[offset:], buffer)
	return d.db.Put(key, value, nil)
}
