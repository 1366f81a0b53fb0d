// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners_test

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/counter"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/fixtures"
	"github.com/bitmark-inc/vaultd/protocol"
	"github.com/bitmark-inc/vaultd/rpc/certificate"
	"github.com/bitmark-inc/vaultd/rpc/listeners"
)

// echo framed messages until the peer goes away
func echo(conn net.Conn) {
	for {
		m, err := protocol.ReadMessage(conn)
		if nil != err {
			return
		}
		err = protocol.WriteMessage(conn, m)
		if nil != err {
			return
		}
	}
}

func serverTLS(t *testing.T) (*tls.Config, [32]byte) {
	cer, key, err := fixtures.CertificatePair()
	assert.Nil(t, err, "certificate generation error")

	tlsConfig, fin, err := certificate.Get(logger.New(fixtures.LogCategory), "test", cer, key)
	if err != nil {
		t.Error("get certificate with error: ", err)
		t.FailNow()
	}
	return tlsConfig, fin
}

func TestRpcListenerServe(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	port := rand.Intn(30000) + 30000
	listen := fmt.Sprintf("127.0.0.1:%d", port)
	con := listeners.RPCConfiguration{
		MaximumConnections: 5,
		Listen:             []string{listen},
	}

	count := counter.Counter(0)
	tlsConfig, fin := serverTLS(t)

	l, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, echo, tlsConfig, fin)
	assert.Nil(t, err, "wrong NewRPC")

	err = l.Serve()
	assert.Nil(t, err, "wrong Serve")
	defer l.Close()

	c, err := tls.Dial("tcp", listen, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		t.Error("dial with error: ", err)
		t.FailNow()
	}
	defer c.Close()

	err = protocol.WriteMessage(c, []byte("hello"))
	assert.Nil(t, err, "wrong write")
	reply, err := protocol.ReadMessage(c)
	assert.Nil(t, err, "wrong read")
	assert.Equal(t, []byte("hello"), reply, "wrong reply")
	assert.Equal(t, uint64(1), count.Uint64(), "wrong connection count")

	peer := c.ConnectionState().PeerCertificates[0]
	assert.Equal(t, fin, certificate.Fingerprint(peer.Raw), "wrong fingerprint")
}

func TestRpcListenerConnectionLimit(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	port := rand.Intn(30000) + 30000
	listen := fmt.Sprintf("127.0.0.1:%d", port)
	con := listeners.RPCConfiguration{
		MaximumConnections: 1,
		Listen:             []string{listen},
	}

	count := counter.Counter(0)
	tlsConfig, fin := serverTLS(t)

	l, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, echo, tlsConfig, fin)
	assert.Nil(t, err, "wrong NewRPC")
	err = l.Serve()
	assert.Nil(t, err, "wrong Serve")
	defer l.Close()

	first, err := tls.Dial("tcp", listen, &tls.Config{InsecureSkipVerify: true})
	assert.Nil(t, err, "first dial error")
	defer first.Close()
	err = protocol.WriteMessage(first, []byte("one"))
	assert.Nil(t, err, "first write error")
	_, err = protocol.ReadMessage(first)
	assert.Nil(t, err, "first read error")

	second, err := tls.Dial("tcp", listen, &tls.Config{InsecureSkipVerify: true})
	if nil == err {
		_ = second.SetDeadline(time.Now().Add(5 * time.Second))
		err = protocol.WriteMessage(second, []byte("two"))
		if nil == err {
			_, err = protocol.ReadMessage(second)
		}
		_ = second.Close()
	}
	assert.NotNil(t, err, "connection over limit was served")
}

func TestRpcListenerClose(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	port := rand.Intn(30000) + 30000
	listen := fmt.Sprintf("127.0.0.1:%d", port)
	con := listeners.RPCConfiguration{
		MaximumConnections: 1,
		Listen:             []string{listen},
	}

	count := counter.Counter(0)
	tlsConfig, fin := serverTLS(t)

	l, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, echo, tlsConfig, fin)
	assert.Nil(t, err, "wrong NewRPC")
	err = l.Serve()
	assert.Nil(t, err, "wrong Serve")

	err = l.Close()
	assert.Nil(t, err, "wrong Close")

	_, err = tls.Dial("tcp", listen, &tls.Config{InsecureSkipVerify: true})
	assert.NotNil(t, err, "dial after close succeeded")
}

func TestRpcListenerInvalidConfiguration(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	count := counter.Counter(0)
	log := logger.New(fixtures.LogCategory)

	items := []struct {
		configuration listeners.RPCConfiguration
		err           error
	}{
		{listeners.RPCConfiguration{MaximumConnections: 0, Listen: []string{"127.0.0.1:2000"}}, fault.ErrMissingParameters},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{}}, fault.ErrMissingParameters},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{"localhost:2000"}}, fault.ErrInvalidIPAddress},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{""}}, fault.ErrInvalidIPAddress},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{"*"}}, fault.ErrInvalidIPAddress},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{"*:"}}, fault.ErrInvalidIPAddress},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{"*:20:01"}}, fault.ErrInvalidIPAddress},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{"[::1]:2000", "*:2001"}}, nil},
	}

	for i, item := range items {
		_, err := listeners.NewRPC(&item.configuration, log, &count, echo, &tls.Config{}, [32]byte{})
		assert.Equalf(t, item.err, err, "%d: wrong error", i)
	}
}
