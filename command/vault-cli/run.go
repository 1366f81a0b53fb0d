// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/vaultd/client"
	"github.com/bitmark-inc/vaultd/fault"
)

// dial the server named in the global flags
func connect(m *metadata) (*client.Client, error) {
	if "" == m.fingerprint {
		return nil, fault.ErrMissingFingerprint
	}
	fingerprint, err := client.ParseFingerprint(m.fingerprint)
	if nil != err {
		return nil, err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "connect: %s  fingerprint: %x\n", m.connect, fingerprint)
	}
	return client.Dial(m.connect, fingerprint, m.timeout)
}

// the user name is required, the password prompted when not given
func credentials(m *metadata, prompt func() (string, error)) (string, string, error) {
	if "" == m.user {
		return "", "", fault.ErrUsernameLength
	}
	if "" != m.password {
		return m.user, m.password, nil
	}
	password, err := prompt()
	if nil != err {
		return "", "", err
	}
	return m.user, password, nil
}

// connect and authenticate
func login(m *metadata) (*client.Client, error) {
	name, password, err := credentials(m, promptPassword)
	if nil != err {
		return nil, err
	}

	c, err := connect(m)
	if nil != err {
		return nil, err
	}

	err = c.Authenticate(name, password)
	if nil != err {
		c.Close()
		return nil, err
	}
	return c, nil
}

func runPing(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	size := c.Int("size")
	if size < 0 {
		return fault.ErrInvalidLength
	}
	data := make([]byte, size)
	_, err := io.ReadFull(rand.Reader, data)
	if nil != err {
		return err
	}

	conn, err := connect(m)
	if nil != err {
		return err
	}
	defer conn.Close()

	err = conn.Ping(data)
	if nil != err {
		return err
	}

	return printJson(m.w, map[string]interface{}{
		"server": m.connect,
		"echoed": size,
	})
}

func runCreate(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	name, password, err := credentials(m, promptNewPassword)
	if nil != err {
		return err
	}

	conn, err := connect(m)
	if nil != err {
		return err
	}
	defer conn.Close()

	err = conn.CreateAccount(name, password)
	if nil != err {
		return err
	}

	return printJson(m.w, map[string]interface{}{
		"user":    name,
		"created": true,
	})
}

func runWrite(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	input := c.String("input")
	in := io.Reader(os.Stdin)
	if "" != input && "-" != input {
		fd, err := os.Open(input)
		if nil != err {
			return err
		}
		defer fd.Close()
		in = fd
	}

	conn, err := login(m)
	if nil != err {
		return err
	}
	defer conn.Close()

	total, err := writeChunks(conn, in, c.Int("offset"), c.Int("chunk"))
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "wrote: %d bytes\n", total)
	}
	return nil
}

func runRead(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	length := c.Int("length")
	if length < 0 {
		return fault.ErrInvalidLength
	}

	output := c.String("output")
	out := m.w
	if "" != output && "-" != output {
		fd, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if nil != err {
			return err
		}
		defer fd.Close()
		out = fd
	}

	conn, err := login(m)
	if nil != err {
		return err
	}
	defer conn.Close()

	return readChunks(conn, out, c.Int("offset"), length, c.Int("chunk"), c.Bool("hex"))
}
