// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"encoding/binary"

	"github.com/bitmark-inc/vaultd/fault"
)

// Message - an encoded request or response
type Message []byte

// NewRequest - start a request with its command byte
func NewRequest(command Command) Message {
	return Message{byte(command)}
}

// NewResponse - start an empty response
func NewResponse() Message {
	return Message{}
}

// AppendInt32 - append a signed integer
func (m Message) AppendInt32(value int32) Message {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(value))
	return append(m, b...)
}

// AppendBool - append a boolean
func (m Message) AppendBool(value bool) Message {
	if value {
		return append(m, 1)
	}
	return append(m, 0)
}

// AppendString - append a length prefixed string
func (m Message) AppendString(s string) Message {
	m = m.AppendInt32(int32(len(s)))
	return append(m, s...)
}

// AppendBytes - append length prefixed data
func (m Message) AppendBytes(data []byte) Message {
	m = m.AppendInt32(int32(len(data)))
	return append(m, data...)
}

// AppendRaw - append data with no length prefix
func (m Message) AppendRaw(data []byte) Message {
	return append(m, data...)
}

// Reader - sequential field decoder
//
// the first error is sticky: later calls return zero values and
// Err reports it
type Reader struct {
	data   []byte
	offset int
	err    error
}

// NewReader - decode fields of a received message
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err - first decoding error
func (r *Reader) Err() error {
	return r.err
}

// Remaining - count of undecoded bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// Done - error unless every byte was decoded
func (r *Reader) Done() error {
	if nil != r.err {
		return r.err
	}
	if r.offset != len(r.data) {
		return fault.ErrInvalidLength
	}
	return nil
}

// Command - read the command byte
func (r *Reader) Command() Command {
	b := r.take(1)
	if nil == b {
		return 0
	}
	return Command(b[0])
}

// Int32 - read a signed integer
func (r *Reader) Int32() int32 {
	b := r.take(4)
	if nil == b {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

// Bool - read a boolean, any non-zero byte is true
func (r *Reader) Bool() bool {
	b := r.take(1)
	if nil == b {
		return false
	}
	return 0 != b[0]
}

// String - read a length prefixed string
func (r *Reader) String() string {
	return string(r.Bytes())
}

// Bytes - read length prefixed data
func (r *Reader) Bytes() []byte {
	n := r.Int32()
	if nil != r.err {
		return nil
	}
	if n < 0 {
		r.err = fault.ErrInvalidLength
		return nil
	}
	return r.Raw(int(n))
}

// Raw - read exactly n bytes, the result shares the message storage
func (r *Reader) Raw(n int) []byte {
	if n < 0 && nil == r.err {
		r.err = fault.ErrInvalidLength
	}
	return r.take(n)
}

func (r *Reader) take(n int) []byte {
	if nil != r.err {
		return nil
	}
	if n > len(r.data)-r.offset {
		r.err = fault.ErrShortMessage
		return nil
	}
	b := r.data[r.offset : r.offset+n : r.offset+n]
	r.offset += n
	return b
}
