// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/bitmark-inc/vaultd/fault"
)

var passwordConsole *terminal.Terminal

func getTerminal() (*terminal.Terminal, int, *terminal.State, error) {
	oldState, err := terminal.MakeRaw(0)
	if err != nil {
		return nil, 0, nil, err
	}

	if nil != passwordConsole {
		return passwordConsole, 0, oldState, nil
	}

	tmpIO, err := os.OpenFile("/dev/tty", os.O_RDWR, os.ModePerm)
	if nil != err {
		terminal.Restore(0, oldState)
		return nil, 0, nil, err
	}

	passwordConsole = terminal.NewTerminal(tmpIO, "vault-cli: ")

	return passwordConsole, 0, oldState, nil
}

func readPassword(prompt string) (string, error) {
	console, fd, state, err := getTerminal()
	if nil != err {
		return "", err
	}
	defer terminal.Restore(fd, state)

	return console.ReadPassword(prompt)
}

// ask twice for a new account's password
func promptNewPassword() (string, error) {
	password, err := readPassword("new password: ")
	if nil != err {
		return "", err
	}
	if "" == password {
		return "", fault.ErrPasswordLength
	}

	verifyPassword, err := readPassword("verify password: ")
	if nil != err {
		return "", err
	}

	if password != verifyPassword {
		return "", fault.ErrPasswordMismatch
	}

	return password, nil
}

func promptPassword() (string, error) {
	return readPassword("password: ")
}
