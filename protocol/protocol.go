// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"fmt"
)

// Command - request type
type Command uint8

// request types
const (
	Ping          Command = 0
	Authenticate  Command = 1
	CreateAccount Command = 2
	Write         Command = 3
	Read          Command = 4
)

// String - name of a command for logging
func (c Command) String() string {
	switch c {
	case Ping:
		return "ping"
	case Authenticate:
		return "authenticate"
	case CreateAccount:
		return "createAccount"
	case Write:
		return "write"
	case Read:
		return "read"
	default:
		return fmt.Sprintf("command(%d)", uint8(c))
	}
}

// Code - result of a write or read
type Code int32

// result codes
const (
	Success          Code = 0
	Unauthorized     Code = 1
	IntegrityFailure Code = 2
	RangeFailure     Code = 3
	InternalFailure  Code = 4
)

// String - name of a code for logging
func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case Unauthorized:
		return "unauthorized"
	case IntegrityFailure:
		return "integrityFailure"
	case RangeFailure:
		return "rangeFailure"
	case InternalFailure:
		return "internalFailure"
	default:
		return fmt.Sprintf("code(%d)", int32(c))
	}
}
