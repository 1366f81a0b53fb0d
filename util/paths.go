// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package util - file system helpers shared by the daemon and its configuration
package util

import (
	"os"
	"path/filepath"
)

// EnsureAbsolute - ensure the path is absolute
// if not, prepend the directory to make absolute path
func EnsureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}

// EnsureFileExists - check if file exists
func EnsureFileExists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}

// IsDirectory - true if name exists and is a directory
//
// a missing path is reported as the underlying error
func IsDirectory(name string) (bool, error) {
	info, err := os.Stat(name)
	if nil != err {
		return false, err
	}
	return info.IsDir(), nil
}
