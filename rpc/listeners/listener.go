// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"strings"

	"github.com/bitmark-inc/vaultd/fault"
)

// Listener - a started network service
type Listener interface {
	Serve() error
	Close() error
}

// change "*:PORT" to "[::]:PORT"
// on the assumption that this will listen on tcp4 and tcp6
func expandWildcard(listen string) (string, error) {
	parts := strings.Split(listen, ":")
	if 2 != len(parts) || "*" != parts[0] || 0 == len(parts[1]) {
		return "", fault.ErrInvalidIPAddress
	}
	return "[::]:" + parts[1], nil
}
