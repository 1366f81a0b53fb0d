// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/tls"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/logger"
)

// FingerprintSize - bytes in a certificate fingerprint
const FingerprintSize = 32

// Get - verify that a set of listener parameters are valid
// and return the server TLS configuration and certificate fingerprint
func Get(log *logger.L, name, certificate, key string) (*tls.Config, [FingerprintSize]byte, error) {
	var fin [FingerprintSize]byte

	keyPair, err := tls.X509KeyPair([]byte(certificate), []byte(key))
	if err != nil {
		log.Errorf("%s failed to load keypair: %v", name, err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
		MinVersion: tls.VersionTLS12,
	}

	fin = Fingerprint(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}

// Fingerprint - compute the fingerprint of a DER certificate
//
// FreeBSD: openssl x509 -outform DER -in vaultd-local-rpc.crt | sha3sum -a 256
func Fingerprint(certificate []byte) [FingerprintSize]byte {
	return sha3.Sum256(certificate)
}
