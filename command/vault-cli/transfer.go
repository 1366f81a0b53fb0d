// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"io"
	"math"

	"github.com/bitmark-inc/vaultd/fault"
)

// small enough to stay under the server's default per request block limit
const defaultChunkSize = 64 * 1024

// the storage operations used to move data
type storage interface {
	Write(data []byte, storageOffset int32) error
	Read(buffer []byte, storageOffset int32) error
}

// copy a stream into the store starting at offset, one chunk per request
func writeChunks(s storage, in io.Reader, offset int, chunk int) (int, error) {
	if chunk < 1 || offset < 0 {
		return 0, fault.ErrInvalidLength
	}

	buffer := make([]byte, chunk)
	total := 0
	for {
		n, err := io.ReadFull(in, buffer)
		if n > 0 {
			if offset+n > math.MaxInt32 {
				return total, fault.ErrOutOfRange
			}
			if e := s.Write(buffer[:n], int32(offset)); nil != e {
				return total, e
			}
			offset += n
			total += n
		}
		if io.EOF == err || io.ErrUnexpectedEOF == err {
			return total, nil
		}
		if nil != err {
			return total, err
		}
	}
}

// copy length bytes from the store starting at offset to a stream
func readChunks(s storage, out io.Writer, offset int, length int, chunk int, hexDump bool) error {
	if chunk < 1 || offset < 0 || length < 0 {
		return fault.ErrInvalidLength
	}
	if offset+length > math.MaxInt32 {
		return fault.ErrOutOfRange
	}

	var dumper io.WriteCloser
	if hexDump {
		dumper = hex.Dumper(out)
		defer dumper.Close()
		out = dumper
	}

	buffer := make([]byte, chunk)
	for length > 0 {
		n := chunk
		if n > length {
			n = length
		}
		err := s.Read(buffer[:n], int32(offset))
		if nil != err {
			return err
		}
		_, err = out.Write(buffer[:n])
		if nil != err {
			return err
		}
		offset += n
		length -= n
	}
	return nil
}
