// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"encoding/binary"
	"unicode"
	"unicode/utf8"

	"github.com/bitmark-inc/vaultd/fault"
)

// limits on credentials
const (
	MaxUsernameLength = 128
	MaxPasswordLength = 1024
)

// record layout in the registry store
//
//   [0:2]     name length (uint16 BE)
//   [2:130]   name, zero padded
//   [130:146] salt
//   [146:178] verifier
//   [178:186] store index (uint64 BE)
//   [186:192] reserved
const (
	saltSize     = 16
	verifierSize = 32

	nameLengthOffset = 0
	nameOffset       = 2
	saltOffset       = nameOffset + MaxUsernameLength
	verifierOffset   = saltOffset + saltSize
	indexOffset      = verifierOffset + verifierSize
	recordSize       = 192
)

// one registered user
type record struct {
	name     string
	salt     [saltSize]byte
	verifier [verifierSize]byte
	index    uint64
}

func (r *record) pack() []byte {
	buffer := make([]byte, recordSize)
	binary.BigEndian.PutUint16(buffer[nameLengthOffset:], uint16(len(r.name)))
	copy(buffer[nameOffset:saltOffset], r.name)
	copy(buffer[saltOffset:], r.salt[:])
	copy(buffer[verifierOffset:], r.verifier[:])
	binary.BigEndian.PutUint64(buffer[indexOffset:], r.index)
	return buffer
}

func unpackRecord(buffer []byte) (*record, error) {
	if len(buffer) != recordSize {
		return nil, fault.ErrRecordCorrupted
	}

	n := int(binary.BigEndian.Uint16(buffer[nameLengthOffset:]))
	if n > MaxUsernameLength {
		return nil, fault.ErrRecordCorrupted
	}
	name := string(buffer[nameOffset : nameOffset+n])
	if nil != validateUsername(name) {
		return nil, fault.ErrRecordCorrupted
	}

	r := &record{
		name:  name,
		index: binary.BigEndian.Uint64(buffer[indexOffset:]),
	}
	copy(r.salt[:], buffer[saltOffset:])
	copy(r.verifier[:], buffer[verifierOffset:])
	return r, nil
}

func validateUsername(name string) error {
	if 0 == len(name) || len(name) > MaxUsernameLength {
		return fault.ErrUsernameLength
	}
	if !utf8.ValidString(name) {
		return fault.ErrInvalidUsername
	}
	for _, c := range name {
		if unicode.IsControl(c) {
			return fault.ErrInvalidUsername
		}
	}
	return nil
}

func validatePassword(password string) error {
	if 0 == len(password) || len(password) > MaxPasswordLength {
		return fault.ErrPasswordLength
	}
	return nil
}
