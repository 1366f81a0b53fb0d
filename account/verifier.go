// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"crypto/subtle"

	argon2 "github.com/bitmark-inc/go-argon2"
)

// password hashing parameters
var hashContext = &argon2.Context{
	Iterations:  5,
	Memory:      1 << 16,
	Parallelism: 4,
	HashLen:     verifierSize,
	Mode:        argon2.ModeArgon2i,
	Version:     argon2.Version13,
}

func makeVerifier(password string, salt []byte) ([verifierSize]byte, error) {
	verifier := [verifierSize]byte{}

	hash, err := argon2.Hash(hashContext, []byte(password), salt)
	if nil != err {
		return verifier, err
	}
	copy(verifier[:], hash)
	return verifier, nil
}

func (r *record) matches(password string) (bool, error) {
	verifier, err := makeVerifier(password, r.salt[:])
	if nil != err {
		return false, err
	}
	return 1 == subtle.ConstantTimeCompare(verifier[:], r.verifier[:]), nil
}
