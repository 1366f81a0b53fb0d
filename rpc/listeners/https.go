// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/rpc/handler"
)

const (
	httpsLogName     = "https_status"
	readWriteTimeout = 10 * time.Second
)

// HTTPSConfiguration - configuration file data for the status server
type HTTPSConfiguration struct {
	MaximumConnections uint64              `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string            `gluamapper:"listen" json:"listen"`
	Certificate        string              `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string              `gluamapper:"private_key" json:"private_key"`
	Allow              map[string][]string `gluamapper:"allow" json:"allow"`
}

type httpsListener struct {
	sync.Mutex

	log             *logger.L
	listenIPAndPort []string
	tlsConfig       *tls.Config
	mux             *http.ServeMux
	servers         []*http.Server
}

// Serve - start a status server on every listen address
func (h *httpsListener) Serve() error {
	h.Lock()
	defer h.Unlock()

	for _, listen := range h.listenIPAndPort {
		h.log.Infof("starting server: %s on: %q", httpsLogName, listen)
		if '*' == listen[0] {
			listen, _ = expandWildcard(listen)
		}

		ln, err := net.Listen("tcp", listen)
		if err != nil {
			h.log.Errorf("%s listen error: %s", httpsLogName, err)
			return err
		}

		s := &http.Server{
			Addr:           listen,
			Handler:        h.mux,
			ReadTimeout:    readWriteTimeout,
			WriteTimeout:   readWriteTimeout,
			MaxHeaderBytes: 1 << 20,
		}
		h.servers = append(h.servers, s)

		go doServeHTTPS(s, ln, h.tlsConfig, h.log)
	}

	return nil
}

// Close - stop all status servers
func (h *httpsListener) Close() error {
	h.Lock()
	defer h.Unlock()

	for _, s := range h.servers {
		_ = s.Close()
	}
	h.servers = nil
	return nil
}

type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}

func doServeHTTPS(s *http.Server, ln net.Listener, cfg *tls.Config, log *logger.L) {
	cfg.NextProtos = []string{"http/1.1"}

	tlsListener := tls.NewListener(tcpKeepAliveListener{ln.(*net.TCPListener)}, cfg)

	err := s.Serve(tlsListener)
	log.Infof("%s terminated: %s", httpsLogName, err)
}

// NewHTTPS - validate configuration and routes for the status server
//
// returns nil without error when no listen address is configured
func NewHTTPS(
	configuration *HTTPSConfiguration,
	log *logger.L,
	tlsConfig *tls.Config,
	hdlr handler.Handler,
) (Listener, error) {
	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", httpsLogName)
		return nil, nil
	}

	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", httpsLogName, configuration.MaximumConnections)
		return nil, fault.ErrMissingParameters
	}

	for _, listen := range configuration.Listen {
		if 0 == len(listen) {
			log.Errorf("%s listen error: %s", httpsLogName, fault.ErrInvalidIPAddress)
			return nil, fault.ErrInvalidIPAddress
		}
		if '*' == listen[0] {
			if _, err := expandWildcard(listen); nil != err {
				log.Errorf("%s listen: %q  error: %s", httpsLogName, listen, err)
				return nil, err
			}
		}
	}

	h := httpsListener{
		log:             log,
		listenIPAndPort: configuration.Listen,
		tlsConfig:       tlsConfig,
	}

	// create access control from CIDR strings
	local := make(map[string][]*net.IPNet)
	for path, addresses := range configuration.Allow {
		set := make([]*net.IPNet, len(addresses))
		local[path] = set
		for i, ip := range addresses {
			_, cidr, err := net.ParseCIDR(strings.Trim(ip, " "))
			if nil != err {
				return nil, err
			}
			set[i] = cidr
		}
	}

	hdlr.SetAllow(local)

	h.mux = http.NewServeMux()
	h.mux.HandleFunc("/vaultd/details", hdlr.Details)
	h.mux.HandleFunc("/vaultd/connections", hdlr.Connections)
	h.mux.HandleFunc("/", hdlr.Root)

	return &h, nil
}
