// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package protocol - request and response encoding
//
// every message travels as a 4 byte big endian length followed by
// that many bytes; inside a message the fields are:
//
//   command   1 byte
//   integer   4 bytes, big endian, signed
//   boolean   1 byte, 0 or 1
//   string    integer length followed by the bytes
//   bytes     integer length followed by the bytes
//
// requests start with the command byte; responses carry no command
package protocol
