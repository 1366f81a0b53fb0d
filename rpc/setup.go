// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"net"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/counter"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/rpc/certificate"
	"github.com/bitmark-inc/vaultd/rpc/handler"
	"github.com/bitmark-inc/vaultd/rpc/listeners"
	"github.com/bitmark-inc/vaultd/rpc/session"
)

const (
	tlsName = "client_rpc"
)

// Registry - the account operations and statistics used by sessions
type Registry interface {
	session.Registry
	handler.Users
}

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log        *logger.L // logger
	sessionLog *logger.L

	registry Registry
	limits   session.Settings

	listeners []listeners.Listener

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// active storage sessions
var connectionCount counter.Counter

// Initialise - start the storage service and optional status server
func Initialise(
	rpcConfiguration *listeners.RPCConfiguration,
	httpsConfiguration *listeners.HTTPSConfiguration,
	limits session.Settings,
	registry Registry,
	stores handler.Stores,
	version string,
) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to Start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	globalData.sessionLog = logger.New("session")
	globalData.registry = registry
	globalData.limits = limits
	globalData.listeners = nil
	log.Info("starting…")

	tlsConfig, certificateFingerprint, err := certificate.Get(log, tlsName, rpcConfiguration.Certificate, rpcConfiguration.PrivateKey)
	if nil != err {
		return err
	}

	rpcListener, err := listeners.NewRPC(
		rpcConfiguration,
		log,
		&connectionCount,
		serveConnection,
		tlsConfig,
		certificateFingerprint,
	)
	if nil != err {
		return err
	}

	err = rpcListener.Serve()
	if nil != err {
		_ = rpcListener.Close()
		return err
	}
	globalData.listeners = append(globalData.listeners, rpcListener)

	err = initialiseHTTPS(httpsConfiguration, registry, stores, version)
	if nil != err {
		closeListeners()
		return err
	}

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop accepting connections
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	closeListeners()

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// SetLimits - change limits for sessions started from now on
func SetLimits(limits session.Settings) {
	globalData.Lock()
	globalData.limits = limits
	globalData.Unlock()
}

// ConnectionCount - number of active storage sessions
func ConnectionCount() uint64 {
	return connectionCount.Uint64()
}

func initialiseHTTPS(configuration *listeners.HTTPSConfiguration, registry Registry, stores handler.Stores, version string) error {
	log := globalData.log
	name := "https_status"

	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", name)
		return nil
	}

	tlsConfig, fingerprint, err := certificate.Get(log, name, configuration.Certificate, configuration.PrivateKey)
	if nil != err {
		return err
	}
	log.Infof("%s: SHA3-256 fingerprint: %x", name, fingerprint)

	h := handler.New(log, time.Now(), version, configuration.MaximumConnections, stores, registry, &connectionCount)
	httpsListener, err := listeners.NewHTTPS(configuration, log, tlsConfig, h)
	if nil != err {
		return err
	}

	err = httpsListener.Serve()
	if nil != err {
		_ = httpsListener.Close()
		return err
	}
	globalData.listeners = append(globalData.listeners, httpsListener)
	return nil
}

// must hold the lock
func closeListeners() {
	for _, l := range globalData.listeners {
		_ = l.Close()
	}
	globalData.listeners = nil
}

// run one storage session on an accepted connection
func serveConnection(conn net.Conn) {
	globalData.RLock()
	log := globalData.sessionLog
	registry := globalData.registry
	limits := globalData.limits
	globalData.RUnlock()

	log.Infof("connection from: %s", conn.RemoteAddr())

	s := session.New(log, registry, limits)
	err := s.Serve(conn)
	if nil != err {
		log.Infof("connection from: %s  user: %q  ended: %s", conn.RemoteAddr(), s.User(), err)
		return
	}
	log.Infof("connection from: %s  user: %q  closed", conn.RemoteAddr(), s.User())
}
