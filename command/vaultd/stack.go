// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/rand"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vaultd/account"
	"github.com/bitmark-inc/vaultd/blockstore"
	"github.com/bitmark-inc/vaultd/multiplexor"
	"github.com/bitmark-inc/vaultd/sealing"
)

// the layers built over the physical device
type stack struct {
	device   blockstore.BlockStore
	sealed   *sealing.Store
	mux      *multiplexor.Multiplexor
	registry *account.Registry
}

// build the layers, formatting a device that was never used
func openStack(log *logger.L, device blockstore.BlockStore, keyFile string, settings account.Settings) (*stack, error) {

	secret, err := sealing.ReadKeyFile(keyFile)
	if nil != err {
		return nil, err
	}

	fresh, err := neverFormatted(device)
	if nil != err {
		return nil, err
	}

	sealed, err := sealing.New(device, secret, rand.Reader)
	if nil != err {
		return nil, err
	}

	if fresh {
		log.Warn("empty device: formatting")
		err = sealed.Format()
		if nil != err {
			return nil, err
		}
	}

	mux, err := multiplexor.New(sealed)
	if nil != err {
		return nil, err
	}

	registry, err := account.New(mux, settings)
	if nil != err {
		return nil, err
	}

	return &stack{
		device:   device,
		sealed:   sealed,
		mux:      mux,
		registry: registry,
	}, nil
}

// a formatted device always has a salt in its superblock
func neverFormatted(device blockstore.BlockStore) (bool, error) {
	super := make([]byte, device.SuperBlockSize())
	err := device.ReadSuperBlock(super, 0)
	if nil != err {
		return false, err
	}
	return blockstore.IsZero(super), nil
}
