// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/vaultd/account"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/rpc/listeners"
	"github.com/bitmark-inc/vaultd/rpc/session"
	"github.com/bitmark-inc/vaultd/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultSealingKeyFile  = "sealing.key"
	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "vaultd.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "vaultd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients   = 50
	defaultHTTPSClients = 10

	defaultRequestRate   = 200  // blocks per second per session
	defaultRequestBurst  = 1024 // blocks
	defaultMaximumBlocks = 1024 // blocks in a single read or write
	defaultIdleTimeout   = 300  // seconds

	defaultFailureLimit  = 5
	defaultFailureWindow = 300 // seconds
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// a fresh map each time as the parsed levels are merged into it
func defaultLogLevels() LoglevelMap {
	return LoglevelMap{
		logger.DefaultTag: "critical",
	}
}

// DatabaseType - leveldb location
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// AccountsType - failed login throttle
type AccountsType struct {
	FailureLimit  int `gluamapper:"failure_limit" json:"failure_limit"`
	FailureWindow int `gluamapper:"failure_window" json:"failure_window"` // seconds
}

// Configuration - everything the daemon reads from its configuration file
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string       `gluamapper:"pidfile" json:"pidfile"`
	SealingKey    string       `gluamapper:"sealing_key" json:"sealing_key"`
	Database      DatabaseType `gluamapper:"database" json:"database"`

	Server   listeners.RPCConfiguration   `gluamapper:"server" json:"server"`
	HTTPS    listeners.HTTPSConfiguration `gluamapper:"https" json:"https"`
	Limits   session.Settings             `gluamapper:"limits" json:"limits"`
	Accounts AccountsType                 `gluamapper:"accounts" json:"accounts"`
	Logging  logger.Configuration         `gluamapper:"logging" json:"logging"`
}

// AccountSettings - throttle settings for the account registry
func (c *Configuration) AccountSettings() account.Settings {
	return account.Settings{
		FailureLimit:  c.Accounts.FailureLimit,
		FailureWindow: time.Duration(c.Accounts.FailureWindow) * time.Second,
	}
}

// GetConfiguration - read decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		SealingKey:    defaultSealingKeyFile,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Server: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		// default: share certificate with the storage server
		HTTPS: listeners.HTTPSConfiguration{
			MaximumConnections: defaultHTTPSClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Limits: session.Settings{
			RequestRate:   defaultRequestRate,
			RequestBurst:  defaultRequestBurst,
			MaximumBlocks: defaultMaximumBlocks,
			IdleTimeout:   defaultIdleTimeout,
		},

		Accounts: AccountsType{
			FailureLimit:  defaultFailureLimit,
			FailureWindow: defaultFailureWindow,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels(),
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fault.ErrInvalidDataDirectory
	} else if "." == options.DataDirectory {
		options.DataDirectory = filepath.Clean(dataDirectory) // same directory as the configuration file
	} else {
		options.DataDirectory = util.EnsureAbsolute(dataDirectory, options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if ok, err := util.IsDirectory(options.DataDirectory); nil != err {
		return nil, err
	} else if !ok {
		return nil, fault.ErrInvalidDataDirectory
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.SealingKey,
		&options.Server.Certificate,
		&options.Server.PrivateKey,
		&options.HTTPS.Certificate,
		&options.HTTPS.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fault.ErrNotPlainFileName
		}
	}

	// create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	if options.Accounts.FailureWindow < 0 {
		options.Accounts.FailureWindow = defaultFailureWindow
	}

	return options, nil
}
