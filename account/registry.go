// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - user registry binding credentials to logical stores
//
// the registry keeps its records in logical store 0: the record count
// in the store's superblock and fixed size records in its data blocks
package account

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/arraystore"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/multiplexor"
)

// the logical store holding the registry
const registryStore = 0

// Settings - login throttle configuration
type Settings struct {
	FailureLimit  int
	FailureWindow time.Duration
}

// Registry - user records and their stores
type Registry struct {
	sync.RWMutex // guards users and count; held over a whole create

	log      *logger.L
	mux      *multiplexor.Multiplexor
	store    *multiplexor.SubStore
	records  *arraystore.ArrayStore
	random   io.Reader
	throttle *throttle

	users map[string]*record
	count uint64

	// hashed against on unknown names so both failures cost the same
	decoy *record
}

// New - load the registry from store 0, creating the store on an empty multiplexor
func New(mux *multiplexor.Multiplexor, settings Settings) (*Registry, error) {
	log := logger.New("account")

	if 0 == mux.NumSubStores() {
		s, err := mux.NewSubStore()
		if nil != err {
			return nil, err
		}
		err = s.Format()
		if nil != err {
			return nil, err
		}
		log.Info("created registry store")
	}

	store, err := mux.GetSubStore(registryStore)
	if nil != err {
		return nil, err
	}

	r := &Registry{
		log:      log,
		mux:      mux,
		store:    store,
		records:  arraystore.New(store),
		random:   rand.Reader,
		throttle: newThrottle(settings.FailureLimit, settings.FailureWindow),
		users:    make(map[string]*record),
		decoy:    &record{},
	}

	err = r.load()
	if nil != err {
		log.Errorf("load error: %s", err)
		return nil, err
	}

	log.Infof("accounts: %d", r.count)
	return r, nil
}

// SetThrottle - change the failed login limits
func (r *Registry) SetThrottle(settings Settings) {
	r.throttle.set(settings.FailureLimit, settings.FailureWindow)
	r.log.Infof("throttle: %d failures per %s", settings.FailureLimit, settings.FailureWindow)
}

// Count - number of registered users
func (r *Registry) Count() uint64 {
	r.RLock()
	defer r.RUnlock()
	return r.count
}

// CreateUser - register a new user with a fresh store
//
// an existing name is never overwritten
func (r *Registry) CreateUser(name string, password string) (*multiplexor.SubStore, error) {
	if err := validateUsername(name); nil != err {
		return nil, err
	}
	if err := validatePassword(password); nil != err {
		return nil, err
	}

	rec := &record{name: name}
	_, err := io.ReadFull(r.random, rec.salt[:])
	if nil != err {
		return nil, err
	}
	rec.verifier, err = makeVerifier(password, rec.salt[:])
	if nil != err {
		return nil, err
	}

	r.Lock()
	defer r.Unlock()

	if _, ok := r.users[name]; ok {
		return nil, fault.ErrAccountExists
	}

	s, err := r.mux.NewSubStore()
	if nil != err {
		return nil, err
	}
	rec.index = s.Index()

	err = s.Format()
	if nil != err {
		r.log.Errorf("user: %q  store: %d orphaned  format error: %s", name, rec.index, err)
		return nil, err
	}

	// record first, then the count that makes it visible
	err = r.records.Write(rec.pack(), int64(r.count)*recordSize)
	if nil != err {
		r.log.Errorf("user: %q  store: %d orphaned  record write error: %s", name, rec.index, err)
		return nil, err
	}
	err = r.writeCount(r.count + 1)
	if nil != err {
		r.log.Errorf("user: %q  store: %d orphaned  count write error: %s", name, rec.index, err)
		return nil, err
	}

	r.count += 1
	r.users[name] = rec

	r.log.Infof("created user: %q  store: %d", name, rec.index)
	return s, nil
}

// Auth - return the store of a user whose password matches
func (r *Registry) Auth(name string, password string) (*multiplexor.SubStore, error) {
	if nil != validateUsername(name) || nil != validatePassword(password) {
		return nil, fault.ErrAccessDenied
	}

	if r.throttle.blocked(name) {
		r.log.Warnf("throttled user: %q", name)
		return nil, fault.ErrThrottled
	}

	r.RLock()
	rec, ok := r.users[name]
	r.RUnlock()

	if !ok {
		rec = r.decoy
	}

	match, err := rec.matches(password)
	if nil != err {
		r.log.Errorf("verifier error: %s", err)
		return nil, fault.ErrInternalFailure
	}
	if !ok || !match {
		r.throttle.failed(name)
		r.log.Debugf("denied user: %q", name)
		return nil, fault.ErrAccessDenied
	}

	r.throttle.succeeded(name)
	return r.mux.GetSubStore(rec.index)
}

func (r *Registry) load() error {
	buffer := make([]byte, 8)
	err := r.store.ReadSuperBlock(buffer, 0)
	if nil != err {
		return err
	}
	count := binary.BigEndian.Uint64(buffer)

	stores := r.mux.NumSubStores()
	if count >= stores {
		return fault.ErrRecordCorrupted
	}

	data := make([]byte, recordSize)
	for i := uint64(0); i < count; i += 1 {
		err := r.records.Read(data, int64(i)*recordSize)
		if nil != err {
			return err
		}
		rec, err := unpackRecord(data)
		if nil != err {
			return err
		}
		if registryStore == rec.index || rec.index >= stores {
			return fault.ErrRecordCorrupted
		}
		if _, ok := r.users[rec.name]; ok {
			return fault.ErrRecordCorrupted
		}
		r.users[rec.name] = rec
	}
	r.count = count
	return nil
}

func (r *Registry) writeCount(count uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, count)
	return r.store.WriteSuperBlock(buffer, 0)
}
