// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sealing

import (
	"encoding/binary"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/vaultd/fault"
)

// sizes in bytes
const (
	SecretSize  = 32
	saltSize    = 16
	counterSize = 8
	keySize     = 32
	nonceSize   = 24
)

// key derivation domains
const (
	domainBlock byte = 'B'
	domainSuper byte = 'S'
)

var derivationTag = []byte("vaultd-seal")

// derive the secretbox key for one address
func deriveKey(secret []byte, salt []byte, domain byte, address uint64) *[keySize]byte {
	a := make([]byte, 8)
	binary.BigEndian.PutUint64(a, address)

	h := sha3.NewShake256()
	h.Write(derivationTag)
	h.Write([]byte{domain})
	h.Write(secret)
	h.Write(salt)
	h.Write(a)

	var key [keySize]byte
	h.Read(key[:])
	return &key
}

// nonce is unique for each (address, counter) under a key
func makeNonce(domain byte, address uint64, counter uint64) *[nonceSize]byte {
	var nonce [nonceSize]byte
	binary.BigEndian.PutUint64(nonce[0:], address)
	binary.BigEndian.PutUint64(nonce[8:], counter)
	nonce[16] = domain
	return &nonce
}

// MakeSecret - generate a new master secret
func MakeSecret(random io.Reader) ([]byte, error) {
	secret := make([]byte, SecretSize)
	_, err := io.ReadFull(random, secret)
	if nil != err {
		return nil, err
	}
	return secret, nil
}

// WriteKeyFile - save a master secret as Base58 text
//
// fails if the file already exists
func WriteKeyFile(fileName string, secret []byte) error {
	if SecretSize != len(secret) {
		return fault.ErrInvalidSealingKey
	}

	fd, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if os.IsExist(err) {
		return fault.ErrKeyFileAlreadyExists
	} else if nil != err {
		return err
	}
	_, err = fd.WriteString(base58.Encode(secret) + "\n")
	if nil != err {
		fd.Close()
		os.Remove(fileName)
		return err
	}
	return fd.Close()
}

// ReadKeyFile - load a master secret written by WriteKeyFile
func ReadKeyFile(fileName string) ([]byte, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	secret, err := base58.Decode(strings.TrimSpace(string(data)))
	if nil != err {
		return nil, fault.ErrInvalidSealingKey
	}
	if SecretSize != len(secret) {
		return nil, fault.ErrInvalidSealingKey
	}
	return secret, nil
}
