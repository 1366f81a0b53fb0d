// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sealing_test

import (
	"crypto/rand"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/sealing"
)

func TestKeyFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "sealing")
	assert.Nil(t, err, "temp dir error")
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "vaultd.seal")

	secret, err := sealing.MakeSecret(rand.Reader)
	assert.Nil(t, err, "make secret error")
	assert.Equal(t, sealing.SecretSize, len(secret), "wrong secret size")

	err = sealing.WriteKeyFile(fileName, secret)
	assert.Nil(t, err, "write error")

	err = sealing.WriteKeyFile(fileName, secret)
	assert.Equal(t, fault.ErrKeyFileAlreadyExists, err, "overwrote key file")

	loaded, err := sealing.ReadKeyFile(fileName)
	assert.Nil(t, err, "read error")
	assert.Equal(t, secret, loaded, "secret changed")

	bad := filepath.Join(dir, "bad.seal")
	_ = ioutil.WriteFile(bad, []byte("0OIl not base58\n"), 0600)
	_, err = sealing.ReadKeyFile(bad)
	assert.Equal(t, fault.ErrInvalidSealingKey, err, "bad key accepted")
}
