// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/configuration"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/fixtures"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

const fullConfiguration = `
local M = {}

M.data_directory = "."
M.pidfile = "vaultd.pid"
M.sealing_key = "keys/seal.key"

M.database = {
    directory = "db",
    name = "test.leveldb",
}

M.server = {
    maximum_connections = 7,
    listen = { "127.0.0.1:2150", "[::1]:2150" },
}

M.https = {
    listen = { "127.0.0.1:2151" },
    allow = {
        details = { "127.0.0.1/32" },
    },
}

M.limits = {
    request_rate = 12.5,
    request_burst = 40,
    maximum_blocks = 16,
    idle_timeout = 60,
}

M.accounts = {
    failure_limit = 3,
    failure_window = 90,
}

M.logging = {
    size = 2048,
    count = 2,
    levels = {
        DEFAULT = "info",
        session = "debug",
    },
}

return M
`

func writeConfiguration(t *testing.T, text string) (string, string) {
	directory, err := ioutil.TempDir("", "vaultd-configuration")
	assert.Nil(t, err, "temp dir")

	fileName := filepath.Join(directory, "vaultd.conf")
	err = ioutil.WriteFile(fileName, []byte(text), 0600)
	assert.Nil(t, err, "write configuration")

	// temporary directories may be reached through a symlink
	directory, err = filepath.EvalSymlinks(directory)
	assert.Nil(t, err, "eval symlinks")

	return directory, filepath.Join(directory, "vaultd.conf")
}

func TestGetConfiguration(t *testing.T) {
	directory, fileName := writeConfiguration(t, fullConfiguration)
	defer os.RemoveAll(directory)

	c, err := configuration.GetConfiguration(fileName)
	assert.Nil(t, err, "get configuration")

	assert.Equal(t, filepath.Clean(directory), filepath.Clean(c.DataDirectory), "data directory")
	assert.Equal(t, filepath.Join(directory, "vaultd.pid"), c.PidFile, "pid file")
	assert.Equal(t, filepath.Join(directory, "keys", "seal.key"), c.SealingKey, "sealing key")
	assert.Equal(t, filepath.Join(directory, "db"), c.Database.Directory, "database directory")
	assert.Equal(t, filepath.Join(directory, "db", "test.leveldb"), c.Database.Name, "database name")

	assert.Equal(t, uint64(7), c.Server.MaximumConnections, "server connections")
	assert.Equal(t, []string{"127.0.0.1:2150", "[::1]:2150"}, c.Server.Listen, "server listen")
	assert.Equal(t, filepath.Join(directory, "rpc.crt"), c.Server.Certificate, "server certificate")
	assert.Equal(t, filepath.Join(directory, "rpc.key"), c.Server.PrivateKey, "server key")

	assert.Equal(t, []string{"127.0.0.1:2151"}, c.HTTPS.Listen, "https listen")
	assert.Equal(t, []string{"127.0.0.1/32"}, c.HTTPS.Allow["details"], "https allow")

	assert.Equal(t, 12.5, c.Limits.RequestRate, "request rate")
	assert.Equal(t, 40, c.Limits.RequestBurst, "request burst")
	assert.Equal(t, 16, c.Limits.MaximumBlocks, "maximum blocks")
	assert.Equal(t, 60, c.Limits.IdleTimeout, "idle timeout")

	settings := c.AccountSettings()
	assert.Equal(t, 3, settings.FailureLimit, "failure limit")
	assert.Equal(t, 90*time.Second, settings.FailureWindow, "failure window")

	assert.Equal(t, filepath.Join(directory, "log"), c.Logging.Directory, "log directory")
	assert.Equal(t, "vaultd.log", c.Logging.File, "log file")
	assert.Equal(t, 2048, c.Logging.Size, "log size")
	assert.Equal(t, "debug", c.Logging.Levels["session"], "session level")

	for _, d := range []string{c.Database.Directory, c.Logging.Directory} {
		info, err := os.Stat(d)
		assert.Nil(t, err, "stat: %s", d)
		assert.True(t, info.IsDir(), "not a directory: %s", d)
	}
}

func TestDefaults(t *testing.T) {
	directory, fileName := writeConfiguration(t, `return { data_directory = "." }`)
	defer os.RemoveAll(directory)

	c, err := configuration.GetConfiguration(fileName)
	assert.Nil(t, err, "get configuration")

	assert.Equal(t, "", c.PidFile, "pid file")
	assert.Equal(t, filepath.Join(directory, "sealing.key"), c.SealingKey, "sealing key")
	assert.Equal(t, filepath.Join(directory, "data", "vaultd.leveldb"), c.Database.Name, "database")
	assert.Equal(t, uint64(50), c.Server.MaximumConnections, "server connections")
	assert.Equal(t, 0, len(c.Server.Listen), "server listen")
	assert.Equal(t, 1024, c.Limits.MaximumBlocks, "maximum blocks")
	assert.Equal(t, 5, c.Accounts.FailureLimit, "failure limit")
	assert.Equal(t, "critical", c.Logging.Levels["DEFAULT"], "default level")
}

func TestAbsoluteDataDirectory(t *testing.T) {
	dataDirectory, err := ioutil.TempDir("", "vaultd-data")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dataDirectory)

	directory, fileName := writeConfiguration(t, `return { data_directory = "`+dataDirectory+`" }`)
	defer os.RemoveAll(directory)

	c, err := configuration.GetConfiguration(fileName)
	assert.Nil(t, err, "get configuration")
	assert.Equal(t, filepath.Clean(dataDirectory), c.DataDirectory, "data directory")
	assert.Equal(t, filepath.Join(dataDirectory, "sealing.key"), c.SealingKey, "sealing key")
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		text string
		err  error
	}{
		{`return {}`, fault.ErrInvalidDataDirectory},
		{`return { data_directory = "~" }`, fault.ErrInvalidDataDirectory},
		{`return { data_directory = ".", database = { name = "sub/x.leveldb" } }`, fault.ErrNotPlainFileName},
		{`return { data_directory = ".", logging = { file = "/tmp/x.log" } }`, fault.ErrNotPlainFileName},
		{`return 42`, fault.ErrConfigurationNotTable},
	}

	for i, test := range tests {
		directory, fileName := writeConfiguration(t, test.text)
		_, err := configuration.GetConfiguration(fileName)
		assert.Equal(t, test.err, err, "%d: wrong error", i)
		os.RemoveAll(directory)
	}
}

func TestMissingDataDirectory(t *testing.T) {
	directory, fileName := writeConfiguration(t, `return { data_directory = "does-not-exist" }`)
	defer os.RemoveAll(directory)

	_, err := configuration.GetConfiguration(fileName)
	assert.True(t, os.IsNotExist(err), "unexpected error: %v", err)
}

func TestLuaSyntaxError(t *testing.T) {
	directory, fileName := writeConfiguration(t, `return {`)
	defer os.RemoveAll(directory)

	_, err := configuration.GetConfiguration(fileName)
	assert.NotNil(t, err, "syntax error accepted")
}

func TestLuaArgument(t *testing.T) {
	directory, fileName := writeConfiguration(t, `
local M = {}
M.data_directory = arg[0]:match("(.*/)")
M.pidfile = "from-arg.pid"
return M
`)
	defer os.RemoveAll(directory)

	c, err := configuration.GetConfiguration(fileName)
	assert.Nil(t, err, "get configuration")
	assert.Equal(t, filepath.Join(directory, "from-arg.pid"), c.PidFile, "pid file")
}

func TestSampleConfiguration(t *testing.T) {
	sample, err := ioutil.ReadFile("../command/vaultd/vaultd.conf.sample")
	assert.Nil(t, err, "read sample")

	directory, fileName := writeConfiguration(t, string(sample))
	defer os.RemoveAll(directory)

	c, err := configuration.GetConfiguration(fileName)
	assert.Nil(t, err, "sample configuration")
	assert.Equal(t, []string{"127.0.0.1:2150", "[::1]:2150"}, c.Server.Listen, "server listen")
	assert.Equal(t, 2, len(c.HTTPS.Allow), "allow lists")
	assert.Equal(t, "info", c.Logging.Levels["DEFAULT"], "default level")
}
