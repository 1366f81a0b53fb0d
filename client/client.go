// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package client - storage session from the client side
package client

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"io"
	"net"
	"sync"
	"time"

	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/protocol"
	"github.com/bitmark-inc/vaultd/rpc/certificate"
)

// Client - one connection to a storage server
//
// requests are serialised, a client may be shared between goroutines
type Client struct {
	sync.Mutex

	conn          io.ReadWriter
	authenticated bool
}

// New - client over an established connection
func New(conn io.ReadWriter) *Client {
	return &Client{
		conn: conn,
	}
}

// Dial - connect with TLS and check the server certificate fingerprint
func Dial(address string, fingerprint [certificate.FingerprintSize]byte, timeout time.Duration) (*Client, error) {
	tlsConfig := &tls.Config{
		// the fingerprint check replaces chain verification
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if 0 == len(rawCerts) {
				return fault.ErrFingerprintMismatch
			}
			f := certificate.Fingerprint(rawCerts[0])
			if !bytes.Equal(f[:], fingerprint[:]) {
				return fault.ErrFingerprintMismatch
			}
			return nil
		},
	}

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", address, tlsConfig)
	if nil != err {
		return nil, err
	}
	return New(conn), nil
}

// ParseFingerprint - decode a hex certificate fingerprint
func ParseFingerprint(s string) ([certificate.FingerprintSize]byte, error) {
	var fingerprint [certificate.FingerprintSize]byte

	b, err := hex.DecodeString(s)
	if nil != err {
		return fingerprint, err
	}
	if certificate.FingerprintSize != len(b) {
		return fingerprint, fault.ErrInvalidLength
	}
	copy(fingerprint[:], b)
	return fingerprint, nil
}

// Close - close the connection if it can be closed
func (c *Client) Close() error {
	if closer, ok := c.conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Authenticated - true after a successful authenticate or createAccount
func (c *Client) Authenticated() bool {
	c.Lock()
	defer c.Unlock()
	return c.authenticated
}

// Ping - send data and check the server returns it unchanged
func (c *Client) Ping(data []byte) error {
	c.Lock()
	defer c.Unlock()

	response, err := c.call(protocol.NewRequest(protocol.Ping).AppendBytes(data))
	if nil != err {
		return err
	}
	r := protocol.NewReader(response)
	echo := r.Bytes()
	if nil != r.Done() || !bytes.Equal(data, echo) {
		return fault.ErrInvalidResponse
	}
	return nil
}

// Authenticate - bind the session to a user's store
//
// on failure the session is no longer authenticated
func (c *Client) Authenticate(name string, password string) error {
	c.Lock()
	defer c.Unlock()

	ok, err := c.credentials(protocol.Authenticate, name, password)
	if nil != err {
		return err
	}
	c.authenticated = ok
	if !ok {
		return fault.ErrAccessDenied
	}
	return nil
}

// CreateAccount - create a user and authenticate as that user
func (c *Client) CreateAccount(name string, password string) error {
	c.Lock()
	defer c.Unlock()

	if c.authenticated {
		return fault.ErrAccessDenied
	}

	ok, err := c.credentials(protocol.CreateAccount, name, password)
	if nil != err {
		return err
	}
	if !ok {
		return fault.ErrAccessDenied
	}
	c.authenticated = true
	return nil
}

// Write - store data at a byte offset
func (c *Client) Write(data []byte, storageOffset int32) error {
	c.Lock()
	defer c.Unlock()

	if !c.authenticated {
		return fault.ErrAccessDenied
	}

	request := protocol.NewRequest(protocol.Write).
		AppendInt32(int32(len(data))).
		AppendInt32(storageOffset).
		AppendRaw(data)
	response, err := c.call(request)
	if nil != err {
		return err
	}

	r := protocol.NewReader(response)
	code := protocol.Code(r.Int32())
	if err := r.Done(); nil != err {
		return fault.ErrInvalidResponse
	}
	return errorFor(code)
}

// Read - fill the buffer from a byte offset
func (c *Client) Read(buffer []byte, storageOffset int32) error {
	c.Lock()
	defer c.Unlock()

	if !c.authenticated {
		return fault.ErrAccessDenied
	}

	request := protocol.NewRequest(protocol.Read).
		AppendInt32(int32(len(buffer))).
		AppendInt32(storageOffset)
	response, err := c.call(request)
	if nil != err {
		return err
	}

	r := protocol.NewReader(response)
	code := protocol.Code(r.Int32())
	if nil != r.Err() {
		return fault.ErrInvalidResponse
	}
	if protocol.Success != code {
		return errorFor(code)
	}

	data := r.Raw(len(buffer))
	if err := r.Done(); nil != err {
		return fault.ErrInvalidResponse
	}
	copy(buffer, data)
	return nil
}

func (c *Client) credentials(command protocol.Command, name string, password string) (bool, error) {
	request := protocol.NewRequest(command).AppendString(name).AppendString(password)
	response, err := c.call(request)
	if nil != err {
		return false, err
	}

	r := protocol.NewReader(response)
	ok := r.Bool()
	if err := r.Done(); nil != err {
		return false, fault.ErrInvalidResponse
	}
	return ok, nil
}

// must hold the lock
func (c *Client) call(request protocol.Message) ([]byte, error) {
	err := protocol.WriteMessage(c.conn, request)
	if nil != err {
		return nil, err
	}
	response, err := protocol.ReadMessage(c.conn)
	if io.EOF == err {
		return nil, fault.ErrConnectionClosed
	}
	return response, err
}

func errorFor(code protocol.Code) error {
	switch code {
	case protocol.Success:
		return nil
	case protocol.Unauthorized:
		return fault.ErrUnauthorized
	case protocol.IntegrityFailure:
		return fault.ErrIntegrity
	case protocol.RangeFailure:
		return fault.ErrOutOfRange
	case protocol.InternalFailure:
		return fault.ErrInternalFailure
	default:
		return fault.ErrInvalidResponse
	}
}
