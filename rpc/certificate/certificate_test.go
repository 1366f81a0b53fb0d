// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate_test

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/fixtures"
	"github.com/bitmark-inc/vaultd/rpc/certificate"
)

func TestGet(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	cer, key, err := fixtures.CertificatePair()
	assert.Nil(t, err, "certificate generation error")

	tlsConfig, fingerprint, err := certificate.Get(
		logger.New(fixtures.LogCategory),
		"test",
		cer,
		key,
	)
	assert.Nil(t, err, "wrong Get")

	pair, _ := tls.X509KeyPair([]byte(cer), []byte(key))

	assert.Equal(t, sha3.Sum256(pair.Certificate[0]), fingerprint, "wrong fingerprint")
	assert.Equal(t, pair, tlsConfig.Certificates[0], "wrong config")
	assert.Equal(t, fingerprint, certificate.Fingerprint(pair.Certificate[0]), "fingerprint differs")
}

func TestGetInvalidPair(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	cer, _, err := fixtures.CertificatePair()
	assert.Nil(t, err, "certificate generation error")
	_, key, err := fixtures.CertificatePair()
	assert.Nil(t, err, "certificate generation error")

	_, _, err = certificate.Get(logger.New(fixtures.LogCategory), "test", cer, key)
	assert.NotNil(t, err, "mismatched key accepted")
}
