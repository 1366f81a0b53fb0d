// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client_test

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/account"
	"github.com/bitmark-inc/vaultd/blockstore"
	"github.com/bitmark-inc/vaultd/blockstore/storetest"
	"github.com/bitmark-inc/vaultd/client"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/fixtures"
	"github.com/bitmark-inc/vaultd/multiplexor"
	"github.com/bitmark-inc/vaultd/protocol"
	"github.com/bitmark-inc/vaultd/rpc/session"
	"github.com/bitmark-inc/vaultd/sealing"
)

var limits = session.Settings{
	RequestBurst:  16,
	MaximumBlocks: 16,
}

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// the complete storage stack on a memory device
func newStack(t *testing.T) (*account.Registry, *multiplexor.Multiplexor) {
	secret, err := sealing.MakeSecret(rand.Reader)
	assert.Nil(t, err, "secret error")

	sealed, err := sealing.New(blockstore.NewMemory(4096, 256), secret, rand.Reader)
	assert.Nil(t, err, "sealing error")
	err = sealed.Format()
	assert.Nil(t, err, "format error")

	m, err := multiplexor.New(sealed)
	assert.Nil(t, err, "multiplexor error")

	r, err := account.New(m, account.Settings{})
	assert.Nil(t, err, "registry error")
	return r, m
}

// client and server session joined by an in-process pipe
func newHarness(t *testing.T, registry session.Registry) *client.Client {
	server, conn := net.Pipe()
	go func() {
		s := session.New(logger.New(fixtures.LogCategory), registry, limits)
		_ = s.Serve(server)
		_ = server.Close()
	}()
	return client.New(conn)
}

func TestLocalHarness(t *testing.T) {
	registry, _ := newStack(t)
	c := newHarness(t, registry)
	defer c.Close()

	// ping
	buf := []byte{3, 1, 4, 1, 5, 9, 26, 34, 253}
	assert.Nil(t, c.Ping(buf), "ping error")
	assert.Nil(t, c.Ping(buf[1:len(buf)-1]), "partial ping error")
	assert.Nil(t, c.Ping(nil), "empty ping error")

	// authentication
	name := []string{"Alice", "Bob", "Charlie"}
	pwd := []string{"apassword", "bob's password", "as0c9s83ks#1lasdp"}

	err := c.Authenticate(name[0], pwd[0])
	assert.Equal(t, fault.ErrAccessDenied, err, "authenticated as nonexistent user")

	err = c.CreateAccount(name[0], pwd[0])
	assert.Nil(t, err, "create error")

	err = c.Authenticate(name[0], pwd[0])
	assert.Nil(t, err, "authenticate error")

	err = c.CreateAccount(name[1], pwd[1])
	assert.Equal(t, fault.ErrAccessDenied, err, "create while authenticated")

	err = c.Authenticate(name[0], pwd[1])
	assert.Equal(t, fault.ErrAccessDenied, err, "wrong password accepted")
	assert.False(t, c.Authenticated(), "still authenticated after failure")

	err = c.CreateAccount(name[0], pwd[2])
	assert.Equal(t, fault.ErrAccessDenied, err, "duplicate account created")

	err = c.CreateAccount(name[2], pwd[2])
	assert.Nil(t, err, "create error")
	assert.True(t, c.Authenticated(), "create did not authenticate")

	// read from initial zeroed state
	buffer := storetest.Pattern(979, 1)
	err = c.Read(buffer, 5719)
	assert.Nil(t, err, "read error")
	assert.True(t, blockstore.IsZero(buffer), "fresh store is not zero")

	// write to middle of array, then read back
	data := make([]byte, 10295)
	_, _ = rand.Read(data)
	err = c.Write(data, 37)
	assert.Nil(t, err, "write error")

	readBack := make([]byte, len(data))
	err = c.Read(readBack, 37)
	assert.Nil(t, err, "read error")
	assert.Equal(t, data, readBack, "data changed")

	// another user sees none of it
	err = c.Authenticate(name[0], pwd[0])
	assert.Nil(t, err, "authenticate error")
	err = c.Read(readBack, 37)
	assert.Nil(t, err, "read error")
	assert.True(t, blockstore.IsZero(readBack), "data visible to another user")

	err = c.Write([]byte{1}, -1)
	assert.Equal(t, fault.ErrOutOfRange, err, "negative offset accepted")
}

func TestTwoSessions(t *testing.T) {
	registry, _ := newStack(t)

	alice := newHarness(t, registry)
	defer alice.Close()
	bob := newHarness(t, registry)
	defer bob.Close()

	assert.Nil(t, alice.CreateAccount("alice", "a"), "create error")
	assert.Nil(t, bob.CreateAccount("bob", "b"), "create error")

	assert.Nil(t, alice.Write([]byte("alice"), 0), "write error")
	assert.Nil(t, bob.Write([]byte("bob.."), 0), "write error")

	buffer := make([]byte, 5)
	assert.Nil(t, alice.Read(buffer, 0), "read error")
	assert.Equal(t, []byte("alice"), buffer, "alice data")
	assert.Nil(t, bob.Read(buffer, 0), "read error")
	assert.Equal(t, []byte("bob.."), buffer, "bob data")
}

// fails the test if the client talks to the server
type silentConn struct {
	t *testing.T
}

func (c silentConn) Read(p []byte) (int, error) {
	c.t.Error("unexpected read")
	return 0, errors.New("unexpected read")
}

func (c silentConn) Write(p []byte) (int, error) {
	c.t.Error("unexpected write")
	return 0, errors.New("unexpected write")
}

func TestLocalGuards(t *testing.T) {
	c := client.New(silentConn{t: t})

	err := c.Write([]byte{1}, 0)
	assert.Equal(t, fault.ErrAccessDenied, err, "write before authentication")

	err = c.Read(make([]byte, 1), 0)
	assert.Equal(t, fault.ErrAccessDenied, err, "read before authentication")
}

// a server that answers requests from a script, then disconnects
func scriptedServer(responses ...protocol.Message) *client.Client {
	server, conn := net.Pipe()
	go func() {
		defer server.Close()
		for _, response := range responses {
			_, err := protocol.ReadMessage(server)
			if nil != err {
				return
			}
			err = protocol.WriteMessage(server, response)
			if nil != err {
				return
			}
		}
	}()
	return client.New(conn)
}

func TestResponseCodes(t *testing.T) {
	items := []struct {
		code protocol.Code
		err  error
	}{
		{protocol.Success, nil},
		{protocol.Unauthorized, fault.ErrUnauthorized},
		{protocol.IntegrityFailure, fault.ErrIntegrity},
		{protocol.RangeFailure, fault.ErrOutOfRange},
		{protocol.InternalFailure, fault.ErrInternalFailure},
		{protocol.Code(77), fault.ErrInvalidResponse},
	}

	accepted := protocol.NewResponse().AppendBool(true)

	for i, item := range items {
		response := protocol.NewResponse().AppendInt32(int32(item.code))

		c := scriptedServer(accepted, response)
		assert.Nilf(t, c.Authenticate("user", "password"), "%d: authenticate error", i)
		err := c.Write([]byte{1}, 0)
		assert.Equalf(t, item.err, err, "%d: write error", i)
		_ = c.Close()

		if protocol.Success == item.code {
			continue
		}
		c = scriptedServer(accepted, response)
		assert.Nilf(t, c.Authenticate("user", "password"), "%d: authenticate error", i)
		err = c.Read(make([]byte, 4), 0)
		assert.Equalf(t, item.err, err, "%d: read error", i)
		_ = c.Close()
	}
}

func TestInvalidResponses(t *testing.T) {
	accepted := protocol.NewResponse().AppendBool(true)

	c := scriptedServer(protocol.NewResponse().AppendBytes([]byte("other")))
	assert.Equal(t, fault.ErrInvalidResponse, c.Ping([]byte("hello")), "ping echo mismatch")
	_ = c.Close()

	c = scriptedServer(accepted.AppendRaw([]byte{0}))
	assert.Equal(t, fault.ErrInvalidResponse, c.Authenticate("a", "b"), "long authenticate response")
	_ = c.Close()

	// success with too little data
	c = scriptedServer(accepted, protocol.NewResponse().AppendInt32(0).AppendRaw([]byte{1, 2}))
	assert.Nil(t, c.Authenticate("a", "b"), "authenticate error")
	assert.Equal(t, fault.ErrInvalidResponse, c.Read(make([]byte, 3), 0), "short read response")
	_ = c.Close()

	// server disconnects without answering
	server, conn := net.Pipe()
	go func() {
		_, _ = protocol.ReadMessage(server)
		_ = server.Close()
	}()
	c = client.New(conn)
	assert.Equal(t, fault.ErrConnectionClosed, c.Ping([]byte("x")), "closed connection")
	_ = c.Close()
}

func TestParseFingerprint(t *testing.T) {
	text := "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"
	f, err := client.ParseFingerprint(text)
	assert.Nil(t, err, "parse error")
	assert.Equal(t, text, hex.EncodeToString(f[:]), "fingerprint changed")

	_, err = client.ParseFingerprint(text[2:])
	assert.Equal(t, fault.ErrInvalidLength, err, "short fingerprint accepted")

	_, err = client.ParseFingerprint("zz")
	assert.NotNil(t, err, "invalid hex accepted")
}
