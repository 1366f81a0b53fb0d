// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/background"
	"github.com/bitmark-inc/vaultd/configuration"
)

func TestWatcherReload(t *testing.T) {
	directory, fileName := writeConfiguration(t, `return { data_directory = ".", limits = { request_rate = 1 } }`)
	defer os.RemoveAll(directory)

	reloaded := make(chan *configuration.Configuration, 5)
	w, err := configuration.NewWatcher(fileName, logger.New("watcher"), func(c *configuration.Configuration) {
		reloaded <- c
	})
	assert.Nil(t, err, "new watcher")

	p := background.Start(background.Processes{w}, nil)
	defer p.Stop()

	// a broken edit is ignored
	err = ioutil.WriteFile(fileName, []byte(`return {`), 0600)
	assert.Nil(t, err, "write broken configuration")

	select {
	case <-reloaded:
		t.Fatal("broken configuration was applied")
	case <-time.After(time.Second):
	}

	err = ioutil.WriteFile(fileName, []byte(`return { data_directory = ".", limits = { request_rate = 99 } }`), 0600)
	assert.Nil(t, err, "write configuration")

	select {
	case c := <-reloaded:
		assert.Equal(t, float64(99), c.Limits.RequestRate, "reloaded rate")
	case <-time.After(5 * time.Second):
		t.Fatal("configuration was not reloaded")
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := configuration.NewWatcher("/does/not/exist/vaultd.conf", logger.New("watcher"), func(*configuration.Configuration) {})
	assert.NotNil(t, err, "missing directory accepted")
}
