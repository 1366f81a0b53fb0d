// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"crypto/tls"
	"net"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/counter"
	"github.com/bitmark-inc/vaultd/fault"
)

const (
	logName            = "client_rpc"
	minConnectionCount = 1
)

// ConnectionHandler - serve one accepted connection, the caller closes it
type ConnectionHandler func(conn net.Conn)

// RPCConfiguration - configuration file data for the storage service
type RPCConfiguration struct {
	MaximumConnections uint64   `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string `gluamapper:"listen" json:"listen"`
	Certificate        string   `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string   `gluamapper:"private_key" json:"private_key"`
}

type rpcListener struct {
	sync.Mutex

	log             *logger.L
	count           *counter.Counter
	handler         ConnectionHandler
	maxConnections  uint64
	tlsConfig       *tls.Config
	ipType          []string
	listenIPAndPort []string

	listeners []net.Listener
}

// NewRPC - validate configuration for the storage service listener
func NewRPC(
	configuration *RPCConfiguration,
	log *logger.L,
	count *counter.Counter,
	handler ConnectionHandler,
	tlsConfig *tls.Config,
	certificateFingerprint [32]byte,
) (Listener, error) {
	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", logName, configuration.MaximumConnections)
		return nil, fault.ErrMissingParameters
	}

	if 0 == len(configuration.Listen) {
		log.Errorf("missing %s listen", logName)
		return nil, fault.ErrMissingParameters
	}

	r := rpcListener{
		log:             log,
		maxConnections:  configuration.MaximumConnections,
		listenIPAndPort: append([]string{}, configuration.Listen...),
		handler:         handler,
		count:           count,
		tlsConfig:       tlsConfig,
	}

	log.Infof("%s: SHA3-256 fingerprint: %x", logName, certificateFingerprint)

	// validate all listen addresses
	var err error
	r.ipType, err = parseListenAddress(r.listenIPAndPort, r.log)
	if nil != err {
		return nil, err
	}

	return &r, nil
}

// Serve - start accepting on every listen address
func (r *rpcListener) Serve() error {
	r.Lock()
	defer r.Unlock()

	for i, listen := range r.listenIPAndPort {
		r.log.Infof("starting RPC server: %s", listen)
		listener, err := tls.Listen(r.ipType[i], listen, r.tlsConfig)
		if err != nil {
			r.log.Errorf("rpc server listen error: %s", err)
			return err
		}
		r.listeners = append(r.listeners, listener)

		go doServeRPC(listener, r.handler, r.maxConnections, r.log, r.count)
	}
	return nil
}

// Close - stop accepting, sessions already running continue to the end
func (r *rpcListener) Close() error {
	r.Lock()
	defer r.Unlock()

	for _, listener := range r.listeners {
		_ = listener.Close()
	}
	r.listeners = nil
	return nil
}

func doServeRPC(listen net.Listener, handler ConnectionHandler, maximumConnections uint64, log *logger.L, count *counter.Counter) {
	for {
		conn, err := listen.Accept()
		if err != nil {
			log.Infof("rpc server terminated: accept error: %s", err)
			break
		}
		if count.Acquire(maximumConnections) {
			go func() {
				handler(conn)
				_ = conn.Close()
				count.Release()
			}()
		} else {
			log.Warnf("connection limit reached, rejecting: %s", conn.RemoteAddr())
			_ = conn.Close()
		}

	}
	_ = listen.Close()
	log.Info("RPC accept terminated")
}

func parseListenAddress(addrs []string, log *logger.L) ([]string, error) {
	parsed := make([]string, len(addrs))
	for i, listen := range addrs {
		if 0 == len(listen) {
			log.Errorf("rpc server listen error: %s", fault.ErrInvalidIPAddress)
			return nil, fault.ErrInvalidIPAddress
		}
		if '*' == listen[0] {
			expanded, err := expandWildcard(listen)
			if nil != err {
				log.Errorf("rpc server listen: %q  error: %s", listen, err)
				return nil, err
			}
			addrs[i] = expanded
			listen = "::"
			parsed[i] = "tcp"
		} else if '[' == listen[0] {
			listen = strings.Split(listen[1:], "]:")[0]
			parsed[i] = "tcp6"
		} else {
			listen = strings.Split(listen, ":")[0]
			parsed[i] = "tcp4"
		}

		if ip := net.ParseIP(listen); nil == ip {
			err := fault.ErrInvalidIPAddress
			log.Errorf("rpc server listen error: %s", err)
			return nil, err
		}
	}

	return parsed, nil
}
