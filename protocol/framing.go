// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"encoding/binary"
	"io"

	"github.com/bitmark-inc/vaultd/fault"
)

// MaximumMessageSize - largest frame accepted in either direction
const MaximumMessageSize = 16 << 20

const headerSize = 4

// WriteMessage - send one framed message
func WriteMessage(w io.Writer, message []byte) error {
	if len(message) > MaximumMessageSize {
		return fault.ErrMessageTooLarge
	}

	frame := make([]byte, headerSize+len(message))
	binary.BigEndian.PutUint32(frame, uint32(len(message)))
	copy(frame[headerSize:], message)

	_, err := w.Write(frame)
	return err
}

// ReadMessage - receive one framed message
//
// a clean end of stream before the header returns io.EOF
func ReadMessage(r io.Reader) ([]byte, error) {
	header := make([]byte, headerSize)
	_, err := io.ReadFull(r, header)
	if nil != err {
		return nil, err
	}

	n := binary.BigEndian.Uint32(header)
	if n > MaximumMessageSize {
		return nil, fault.ErrMessageTooLarge
	}

	message := make([]byte, n)
	_, err = io.ReadFull(r, message)
	if io.EOF == err {
		return nil, io.ErrUnexpectedEOF
	}
	if nil != err {
		return nil, err
	}
	return message, nil
}
