// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/fault"
)

func TestRecordPacking(t *testing.T) {
	r := &record{
		name:  "alice",
		index: 0x0102030405060708,
	}
	for i := range r.salt {
		r.salt[i] = byte(i + 1)
	}
	for i := range r.verifier {
		r.verifier[i] = byte(0xff - i)
	}

	buffer := r.pack()
	assert.Equal(t, recordSize, len(buffer), "record size")
	assert.Equal(t, []byte{0, 5, 'a', 'l', 'i', 'c', 'e'}, buffer[:7], "name encoding")

	u, err := unpackRecord(buffer)
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, r, u, "record changed")
}

func TestRecordCorrupted(t *testing.T) {
	buffer := (&record{name: "bob"}).pack()

	buffer[0] = 0xff
	_, err := unpackRecord(buffer)
	assert.Equal(t, fault.ErrRecordCorrupted, err, "oversized name accepted")

	buffer[0] = 0
	buffer[1] = 0
	_, err = unpackRecord(buffer)
	assert.Equal(t, fault.ErrRecordCorrupted, err, "empty name accepted")

	_, err = unpackRecord(buffer[:100])
	assert.Equal(t, fault.ErrRecordCorrupted, err, "short record accepted")
}

func TestValidation(t *testing.T) {
	items := []struct {
		name     string
		password string
		err      error
	}{
		{"alice", "secret", nil},
		{"", "secret", fault.ErrUsernameLength},
		{strings.Repeat("x", MaxUsernameLength), "secret", nil},
		{strings.Repeat("x", MaxUsernameLength+1), "secret", fault.ErrUsernameLength},
		{"bad\nname", "secret", fault.ErrInvalidUsername},
		{"bad\xffname", "secret", fault.ErrInvalidUsername},
		{"alice", "", fault.ErrPasswordLength},
		{"alice", strings.Repeat("p", MaxPasswordLength+1), fault.ErrPasswordLength},
	}

	for i, item := range items {
		err := validateUsername(item.name)
		if nil == err {
			err = validatePassword(item.password)
		}
		assert.Equalf(t, item.err, err, "%d: validation result", i)
	}
}

func TestVerifier(t *testing.T) {
	r := &record{name: "alice"}
	copy(r.salt[:], "0123456789abcdef")

	v, err := makeVerifier("secret", r.salt[:])
	assert.Nil(t, err, "verifier error")
	r.verifier = v

	ok, err := r.matches("secret")
	assert.Nil(t, err, "match error")
	assert.True(t, ok, "correct password rejected")

	ok, err = r.matches("Secret")
	assert.Nil(t, err, "match error")
	assert.False(t, ok, "wrong password accepted")
}
