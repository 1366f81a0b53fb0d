// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package session - per connection request handling
//
// a session is Unauthenticated until an authenticate or createAccount
// request succeeds; it is then bound to that user's store until a
// later authenticate fails or the connection ends
package session

import (
	"io"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/arraystore"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/multiplexor"
	"github.com/bitmark-inc/vaultd/protocol"
	"github.com/bitmark-inc/vaultd/rpc/ratelimit"
)

// Registry - credential checks that yield a user's store
type Registry interface {
	Auth(name string, password string) (*multiplexor.SubStore, error)
	CreateUser(name string, password string) (*multiplexor.SubStore, error)
}

// Settings - per session limits
type Settings struct {
	RequestRate   float64 `gluamapper:"request_rate" json:"request_rate"`
	RequestBurst  int     `gluamapper:"request_burst" json:"request_burst"`
	MaximumBlocks int     `gluamapper:"maximum_blocks" json:"maximum_blocks"`
	IdleTimeout   int     `gluamapper:"idle_timeout" json:"idle_timeout"`
}

// largest read that still fits a response frame
const maximumReadLength = protocol.MaximumMessageSize - 4

// Session - state of one connection
type Session struct {
	log      *logger.L
	registry Registry
	limiter  *rate.Limiter

	maximumBlocks int
	idleTimeout   time.Duration

	// nil while unauthenticated
	user  string
	store *arraystore.ArrayStore
}

// New - create an unauthenticated session
func New(log *logger.L, registry Registry, settings Settings) *Session {
	maximumBlocks := settings.MaximumBlocks
	if maximumBlocks < 1 {
		maximumBlocks = 1
	}
	burst := settings.RequestBurst
	if burst < maximumBlocks {
		burst = maximumBlocks
	}

	return &Session{
		log:           log,
		registry:      registry,
		limiter:       ratelimit.New(settings.RequestRate, burst),
		maximumBlocks: maximumBlocks,
		idleTimeout:   time.Duration(settings.IdleTimeout) * time.Second,
	}
}

// Authenticated - true if bound to a store
func (s *Session) Authenticated() bool {
	return nil != s.store
}

// User - name the session is authenticated as
func (s *Session) User() string {
	return s.user
}

// Serve - handle requests until the peer disconnects or misbehaves
func (s *Session) Serve(conn io.ReadWriter) error {
	for {
		if c, ok := conn.(net.Conn); ok && s.idleTimeout > 0 {
			_ = c.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}

		request, err := protocol.ReadMessage(conn)
		if io.EOF == err {
			return nil
		}
		if nil != err {
			return err
		}

		response, err := s.Handle(request)
		if nil != err {
			s.log.Warnf("closing session: %s", err)
			return err
		}

		err = protocol.WriteMessage(conn, response)
		if nil != err {
			return err
		}
	}
}

// Handle - decode and execute one request
//
// an error result means the connection must be closed
func (s *Session) Handle(request []byte) (protocol.Message, error) {
	r := protocol.NewReader(request)
	command := r.Command()
	if nil != r.Err() {
		return nil, r.Err()
	}

	s.log.Debugf("command: %s", command)

	switch command {
	case protocol.Ping:
		return s.ping(r)
	case protocol.Authenticate:
		return s.authenticate(r)
	case protocol.CreateAccount:
		return s.createAccount(r)
	case protocol.Write:
		return s.write(r)
	case protocol.Read:
		return s.read(r)
	default:
		s.log.Errorf("unknown command: %s", command)
		return nil, fault.ErrInvalidCommand
	}
}

func (s *Session) ping(r *protocol.Reader) (protocol.Message, error) {
	data := r.Bytes()
	if err := r.Done(); nil != err {
		return nil, err
	}
	if err := ratelimit.Limit(s.limiter); nil != err {
		return nil, err
	}
	return protocol.NewResponse().AppendBytes(data), nil
}

func (s *Session) authenticate(r *protocol.Reader) (protocol.Message, error) {
	name := r.String()
	password := r.String()
	if err := r.Done(); nil != err {
		return nil, err
	}
	if err := ratelimit.Limit(s.limiter); nil != err {
		return nil, err
	}

	store, err := s.registry.Auth(name, password)
	if nil != err {
		s.log.Infof("authenticate: %q  error: %s", name, err)
		s.user = ""
		s.store = nil
		return protocol.NewResponse().AppendBool(false), nil
	}

	s.bind(name, store)
	return protocol.NewResponse().AppendBool(true), nil
}

func (s *Session) createAccount(r *protocol.Reader) (protocol.Message, error) {
	name := r.String()
	password := r.String()
	if err := r.Done(); nil != err {
		return nil, err
	}
	if err := ratelimit.Limit(s.limiter); nil != err {
		return nil, err
	}

	if s.Authenticated() {
		s.log.Infof("create: %q  error: %s", name, fault.ErrAlreadyAuthenticated)
		return protocol.NewResponse().AppendBool(false), nil
	}

	store, err := s.registry.CreateUser(name, password)
	if nil != err {
		s.log.Infof("create: %q  error: %s", name, err)
		return protocol.NewResponse().AppendBool(false), nil
	}

	s.bind(name, store)
	return protocol.NewResponse().AppendBool(true), nil
}

func (s *Session) write(r *protocol.Reader) (protocol.Message, error) {
	length := r.Int32()
	offset := r.Int32()
	data := r.Raw(int(length))
	if err := r.Done(); nil != err {
		return nil, err
	}

	code := s.access(offset, int(length))
	if protocol.Success == code {
		code = s.codeFor(s.store.Write(data, int64(offset)), "write", offset)
	}
	return protocol.NewResponse().AppendInt32(int32(code)), nil
}

func (s *Session) read(r *protocol.Reader) (protocol.Message, error) {
	length := r.Int32()
	offset := r.Int32()
	if err := r.Done(); nil != err {
		return nil, err
	}

	code := s.access(offset, int(length))
	if protocol.Success == code && length > maximumReadLength {
		code = protocol.RangeFailure
	}
	if protocol.Success != code {
		return protocol.NewResponse().AppendInt32(int32(code)), nil
	}

	buffer := make([]byte, length)
	code = s.codeFor(s.store.Read(buffer, int64(offset)), "read", offset)
	if protocol.Success != code {
		return protocol.NewResponse().AppendInt32(int32(code)), nil
	}
	return protocol.NewResponse().AppendInt32(int32(code)).AppendRaw(buffer), nil
}

// common checks for write and read, charges the rate limiter
func (s *Session) access(offset int32, length int) protocol.Code {
	if !s.Authenticated() {
		return protocol.Unauthorized
	}
	if offset < 0 || length < 0 {
		return protocol.RangeFailure
	}

	count := s.store.Span(int64(offset), length)
	if 0 == count {
		count = 1
	}
	switch err := ratelimit.LimitN(s.limiter, count, s.maximumBlocks); err {
	case nil:
		return protocol.Success
	case fault.ErrInvalidCount:
		s.log.Infof("user: %q  request of %d blocks exceeds %d", s.user, count, s.maximumBlocks)
		return protocol.RangeFailure
	default:
		s.log.Errorf("user: %q  rate limit error: %s", s.user, err)
		return protocol.InternalFailure
	}
}

// storage errors to response codes
func (s *Session) codeFor(err error, operation string, offset int32) protocol.Code {
	switch {
	case nil == err:
		return protocol.Success
	case fault.IsErrIntegrity(err):
		s.log.Warnf("user: %q  %s at: %d  integrity error: %s", s.user, operation, offset, err)
		return protocol.IntegrityFailure
	case fault.IsErrRange(err):
		return protocol.RangeFailure
	case fault.IsErrPermission(err):
		return protocol.Unauthorized
	default:
		s.log.Errorf("user: %q  %s at: %d  error: %s", s.user, operation, offset, err)
		return protocol.InternalFailure
	}
}

func (s *Session) bind(name string, store *multiplexor.SubStore) {
	s.user = name
	s.store = arraystore.New(store)
	s.log.Infof("user: %q  store: %d", name, store.Index())
}
