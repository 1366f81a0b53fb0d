// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test setup
package fixtures

import (
	"fmt"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// SetupTestLogger - start a logger writing to the testing directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove the log files
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

// CertificatePair - PEM certificate and key for a loopback TLS server
func CertificatePair() (string, string, error) {
	validUntil := time.Now().Add(24 * time.Hour)
	cert, key, err := certgen.NewTLSCertPair("vaultd test certificate", validUntil, true, []string{"127.0.0.1", "localhost"})
	if nil != err {
		return "", "", err
	}
	return string(cert), string(key), nil
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
