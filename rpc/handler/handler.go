// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package handler - HTTPS status pages
package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/counter"
)

// Stores - multiplexor statistics
type Stores interface {
	NumSubStores() uint64
	AllocatedBlocks() uint64
}

// Users - registry statistics
type Users interface {
	Count() uint64
}

// Handler - the status endpoints
type Handler interface {
	Details(w http.ResponseWriter, r *http.Request)
	Connections(w http.ResponseWriter, r *http.Request)
	Root(w http.ResponseWriter, r *http.Request)
	SetAllow(allow map[string][]*net.IPNet)
}

type handler struct {
	sync.RWMutex

	log                *logger.L
	start              time.Time
	version            string
	maximumConnections uint64
	stores             Stores
	users              Users
	sessions           *counter.Counter

	count counter.Counter
	allow map[string][]*net.IPNet
}

// New - create the status handler
func New(
	log *logger.L,
	start time.Time,
	version string,
	maximumConnections uint64,
	stores Stores,
	users Users,
	sessions *counter.Counter,
) Handler {
	return &handler{
		log:                log,
		start:              start,
		version:            version,
		maximumConnections: maximumConnections,
		stores:             stores,
		users:              users,
		sessions:           sessions,
		allow:              make(map[string][]*net.IPNet),
	}
}

// SetAllow - replace the access control lists, keyed by page name
func (h *handler) SetAllow(allow map[string][]*net.IPNet) {
	h.Lock()
	h.allow = allow
	h.Unlock()
}

// Root - anything unmatched
func (h *handler) Root(w http.ResponseWriter, _ *http.Request) {
	sendNotFound(w)
}

// Details - storage and session statistics
func (h *handler) Details(w http.ResponseWriter, r *http.Request) {
	if !h.check(w, r, "details") {
		return
	}
	defer h.count.Release()

	type theReply struct {
		Version         string `json:"version"`
		Uptime          string `json:"uptime"`
		Stores          uint64 `json:"stores"`
		AllocatedBlocks uint64 `json:"allocatedBlocks"`
		Users           uint64 `json:"users"`
		Sessions        uint64 `json:"sessions"`
	}

	reply := theReply{
		Version:         h.version,
		Uptime:          time.Since(h.start).String(),
		Stores:          h.stores.NumSubStores(),
		AllocatedBlocks: h.stores.AllocatedBlocks(),
		Users:           h.users.Count(),
		Sessions:        h.sessions.Uint64(),
	}

	sendReply(w, reply)
}

// Connections - current session count
func (h *handler) Connections(w http.ResponseWriter, r *http.Request) {
	if !h.check(w, r, "connections") {
		return
	}
	defer h.count.Release()

	type theReply struct {
		Sessions uint64 `json:"sessions"`
		Status   uint64 `json:"status"`
	}

	sendReply(w, theReply{
		Sessions: h.sessions.Uint64(),
		Status:   h.count.Uint64(),
	})
}

// method, access list and connection limit
//
// on success the connection count has been incremented
func (h *handler) check(w http.ResponseWriter, r *http.Request, name string) bool {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return false
	}

	if !h.allowed(r.RemoteAddr, name) {
		h.log.Warnf("deny access: %q  to: %s", r.RemoteAddr, name)
		sendForbidden(w)
		return false
	}

	if !h.count.Acquire(h.maximumConnections) {
		sendTooManyRequests(w)
		return false
	}
	return true
}

func (h *handler) allowed(remoteAddr string, name string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if nil != err {
		return false
	}
	ip := net.ParseIP(host)
	if nil == ip {
		return false
	}

	h.RLock()
	defer h.RUnlock()

	for _, cidr := range h.allow[name] {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

func sendReply(w http.ResponseWriter, data interface{}) {
	text, err := json.Marshal(data)
	if nil != err {
		sendInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(text)
}

func sendNotFound(w http.ResponseWriter) {
	sendError(w, "not found", http.StatusNotFound)
}

func sendMethodNotAllowed(w http.ResponseWriter) {
	sendError(w, "method not allowed", http.StatusMethodNotAllowed)
}

func sendForbidden(w http.ResponseWriter) {
	sendError(w, "forbidden", http.StatusForbidden)
}

func sendTooManyRequests(w http.ResponseWriter) {
	sendError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

func sendInternalServerError(w http.ResponseWriter) {
	sendError(w, "internal server error", http.StatusInternalServerError)
}

// to compose JSON error messages
type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// output an error with a JSON body
func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		// manually composed error just incase JSON fails
		http.Error(w, `{"code":500,"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(text)
}
