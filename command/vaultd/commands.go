// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vaultd/configuration"
	"github.com/bitmark-inc/vaultd/sealing"
	"github.com/bitmark-inc/vaultd/storage"
)

const (
	rpcCertificateKeyFilename = "rpc.crt"
	rpcPrivateKeyFilename     = "rpc.key"
	sealingKeyFilename        = "sealing.key"
)

// setup command handler
//
// commands that run to create key and certificate files these
// commands cannot access any internal database or states or the
// configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-rpc-cert", "rpc":
		certificateFilename := getFilenameWithDirectory(arguments, rpcCertificateKeyFilename)
		privateKeyFilename := getFilenameWithDirectory(arguments, rpcPrivateKeyFilename)

		addresses := []string{}
		if len(arguments) >= 2 {
			for _, a := range arguments[1:] {
				if "" != a {
					addresses = append(addresses, a)
				}
			}
		}

		err := makeSelfSignedCertificate("rpc", certificateFilename, privateKeyFilename, 0 != len(addresses), addresses)
		if nil != err {
			fmt.Printf("generate RPC key: %q and certificate: %q error: %s\n", privateKeyFilename, certificateFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated RPC key: %q and certificate: %q\n", privateKeyFilename, certificateFilename)

	case "gen-sealing-key", "seal":
		keyFilename := getFilenameWithDirectory(arguments, sealingKeyFilename)

		secret, err := sealing.MakeSecret(rand.Reader)
		if nil == err {
			err = sealing.WriteKeyFile(keyFilename, secret)
		}
		if nil != err {
			fmt.Printf("generate sealing key: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated sealing key: %q\n", keyFilename)
		fmt.Printf("keep a copy: data cannot be read without it\n")

	case "start", "run":
		return false // continue processing

	case "info", "i":
		return false // defer processing until database is loaded

	case "config-test", "cfg", "fingerprint", "fp":
		return false

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  gen-rpc-cert [DIR]         (rpc)    - create private key in:  %q\n", "DIR/"+rpcPrivateKeyFilename)
		fmt.Printf("                                        and the certificate in: %q\n", "DIR/"+rpcCertificateKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-rpc-cert [DIR] [IPs...]         - create private key in:  %q\n", "DIR/"+rpcPrivateKeyFilename)
		fmt.Printf("                                        and the certificate in: %q\n", "DIR/"+rpcCertificateKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-sealing-key [DIR]      (seal)   - create the block sealing key in: %q\n", "DIR/"+sealingKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  fingerprint                (fp)     - display the server certificate fingerprint\n")
		fmt.Printf("                                        for use with: vault-cli --fingerprint\n")
		fmt.Printf("\n")

		fmt.Printf("  info                       (i)      - display store and account counts\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *configuration.Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	case "fingerprint", "fp":
		fingerprint, err := fingerprintOf(options.Server.Certificate, options.Server.PrivateKey)
		if nil != err {
			exitwithstatus.Message("error: cannot read certificate: %q  error: %s", options.Server.Certificate, err)
		}
		fmt.Printf("%x\n", fingerprint)

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the device and stores are open so these commands can read them
func processDataCommand(log *logger.L, arguments []string, theStack *stack) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {

	case "start", "run":
		return false // continue processing

	case "info", "i":
		blocks, err := storage.Get().Count()
		if nil != err {
			exitwithstatus.Message("error: cannot count blocks: %s", err)
		}
		info := struct {
			Stores          uint64 `json:"stores"`
			Accounts        uint64 `json:"accounts"`
			AllocatedBlocks uint64 `json:"allocatedBlocks"`
			DeviceBlocks    uint64 `json:"deviceBlocks"`
		}{
			Stores:          theStack.mux.NumSubStores(),
			Accounts:        theStack.registry.Count(),
			AllocatedBlocks: theStack.mux.AllocatedBlocks(),
			DeviceBlocks:    blocks,
		}
		log.Infof("info: %+v", info)
		b, err := json.MarshalIndent(info, "", "  ")
		if nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		fmt.Printf("%s\n", b)

	default:
		exitwithstatus.Message("error: no such command: %s", command)

	}

	// indicate processing complete and perform normal exit from main
	return true
}

// get the working directory; if not set in the arguments
// it's set to the current directory
func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 {
		dir = arguments[0]
	}

	return filepath.Join(dir, name)
}
