// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/tls"
	"io/ioutil"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"

	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/rpc/certificate"
	"github.com/bitmark-inc/vaultd/util"
)

// create a self-signed certificate
func makeSelfSignedCertificate(name string, certificateFileName string, privateKeyFileName string, override bool, extraHosts []string) error {

	if util.EnsureFileExists(certificateFileName) {
		return fault.ErrCertificateFileAlreadyExists
	}

	if util.EnsureFileExists(privateKeyFileName) {
		return fault.ErrKeyFileAlreadyExists
	}

	org := "vaultd self signed cert for: " + name
	validUntil := time.Now().Add(10 * 365 * 24 * time.Hour)
	cert, key, err := certgen.NewTLSCertPair(org, validUntil, override, extraHosts)
	if err != nil {
		return err
	}

	if err = ioutil.WriteFile(certificateFileName, cert, 0666); err != nil {
		return err
	}

	if err = ioutil.WriteFile(privateKeyFileName, key, 0600); err != nil {
		os.Remove(certificateFileName)
		return err
	}

	return nil
}

// replace certificate and key file names by their PEM text
func loadKeyPair(certificateFileName *string, privateKeyFileName *string) error {
	certificate, err := ioutil.ReadFile(*certificateFileName)
	if nil != err {
		return err
	}
	key, err := ioutil.ReadFile(*privateKeyFileName)
	if nil != err {
		return err
	}
	*certificateFileName = string(certificate)
	*privateKeyFileName = string(key)
	return nil
}

// the SHA3-256 fingerprint clients pin
func fingerprintOf(certificateFileName string, privateKeyFileName string) ([certificate.FingerprintSize]byte, error) {
	cer, key := certificateFileName, privateKeyFileName
	err := loadKeyPair(&cer, &key)
	if nil != err {
		return [certificate.FingerprintSize]byte{}, err
	}
	keyPair, err := tls.X509KeyPair([]byte(cer), []byte(key))
	if nil != err {
		return [certificate.FingerprintSize]byte{}, err
	}
	return certificate.Fingerprint(keyPair.Certificate[0]), nil
}
