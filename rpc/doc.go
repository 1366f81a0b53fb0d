// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - this is to setup and handle all of the incoming storage
// sessions from clients requiring vaultd services
//
// each TLS connection is served by its own session; an optional HTTPS
// server reports status to permitted addresses
package rpc
