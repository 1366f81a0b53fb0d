// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"
)

type metadata struct {
	connect     string
	fingerprint string
	user        string
	password    string
	timeout     time.Duration
	verbose     bool
	e           io.Writer
	w           io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "vault-cli"
	app.Usage = "store and fetch data on a vaultd server"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "127.0.0.1:2150",
			Usage:  " vaultd host/IP and port, `HOST:PORT`",
			EnvVar: "VAULT_CONNECT",
		},
		cli.StringFlag{
			Name:   "fingerprint, f",
			Value:  "",
			Usage:  "*server certificate SHA3-256 `HEX` from: vaultd fingerprint",
			EnvVar: "VAULT_FINGERPRINT",
		},
		cli.StringFlag{
			Name:   "user, u",
			Value:  "",
			Usage:  " account `NAME`",
			EnvVar: "VAULT_USER",
		},
		cli.StringFlag{
			Name:   "password, p",
			Value:  "",
			Usage:  " account `PASSWORD` (prompted if absent)",
			EnvVar: "VAULT_PASSWORD",
		},
		cli.DurationFlag{
			Name:  "timeout, t",
			Value: 10 * time.Second,
			Usage: " connection timeout `DURATION`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "ping",
			Usage:     "check the server is responding",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "size, s",
					Value: 32,
					Usage: " bytes of random data to echo `COUNT`",
				},
			},
			Action: runPing,
		},
		{
			Name:      "create",
			Usage:     "create a new account and its storage",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runCreate,
		},
		{
			Name:      "write",
			Usage:     "store a file or stdin at an offset",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "offset, o",
					Value: 0,
					Usage: " byte `OFFSET` in the store",
				},
				cli.StringFlag{
					Name:  "input, i",
					Value: "-",
					Usage: " read data from `FILE`",
				},
				cli.IntFlag{
					Name:  "chunk, k",
					Value: defaultChunkSize,
					Usage: " bytes per request `COUNT`",
				},
			},
			Action: runWrite,
		},
		{
			Name:      "read",
			Usage:     "fetch bytes from an offset",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "offset, o",
					Value: 0,
					Usage: " byte `OFFSET` in the store",
				},
				cli.IntFlag{
					Name:  "length, l",
					Value: 0,
					Usage: "*number of bytes `COUNT`",
				},
				cli.StringFlag{
					Name:  "output, O",
					Value: "-",
					Usage: " write data to `FILE`",
				},
				cli.BoolFlag{
					Name:  "hex, x",
					Usage: " hex dump instead of raw bytes",
				},
				cli.IntFlag{
					Name:  "chunk, k",
					Value: defaultChunkSize,
					Usage: " bytes per request `COUNT`",
				},
			},
			Action: runRead,
		},
		{
			Name:   "version",
			Usage:  "display vault-cli version",
			Action: runVersion,
		},
	}

	app.Before = func(c *cli.Context) error {

		c.App.Metadata["config"] = &metadata{
			connect:     c.GlobalString("connect"),
			fingerprint: c.GlobalString("fingerprint"),
			user:        c.GlobalString("user"),
			password:    c.GlobalString("password"),
			timeout:     c.GlobalDuration("timeout"),
			verbose:     c.GlobalBool("verbose"),
			e:           c.App.ErrWriter,
			w:           c.App.Writer,
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", version)
	return nil
}
