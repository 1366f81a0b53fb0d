// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type IntegrityError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type PermissionError GenericError
type ProcessError GenericError
type RangeError GenericError

// common errors - keep in alphabetic order
var (
	ErrAccessDenied                 = PermissionError("access denied")
	ErrAccountExists                = ExistsError("account already exists")
	ErrAlreadyAuthenticated         = PermissionError("session is already authenticated")
	ErrAlreadyInitialised           = InvalidError("already initialised")
	ErrCertificateFileAlreadyExists = ExistsError("certificate file already exists")
	ErrConfigurationNotTable        = InvalidError("configuration did not return a table")
	ErrConnectionClosed             = ProcessError("connection closed")
	ErrDatabaseVersion              = InvalidError("incompatible database version")
	ErrFingerprintMismatch          = PermissionError("server certificate fingerprint mismatch")
	ErrIntegrity                    = IntegrityError("data integrity failure")
	ErrInternalFailure              = ProcessError("internal server failure")
	ErrInvalidCommand               = InvalidError("invalid command")
	ErrInvalidCount                 = RangeError("invalid count")
	ErrInvalidDataDirectory         = InvalidError("invalid data directory")
	ErrInvalidIPAddress             = InvalidError("invalid IP address")
	ErrInvalidLength                = LengthError("invalid length")
	ErrInvalidResponse              = InvalidError("invalid response")
	ErrInvalidSealingKey            = LengthError("invalid sealing key")
	ErrInvalidUsername              = InvalidError("invalid username")
	ErrKeyFileAlreadyExists         = ExistsError("key file already exists")
	ErrMessageTooLarge              = LengthError("message too large")
	ErrMissingFingerprint           = InvalidError("server fingerprint is required")
	ErrMissingParameters            = InvalidError("missing parameters")
	ErrNoSuchStore                  = NotFoundError("no such store")
	ErrNotInitialised               = NotFoundError("not initialised")
	ErrNotPlainFileName             = InvalidError("file name must not contain a directory")
	ErrOutOfRange                   = RangeError("offset or length out of range")
	ErrPasswordLength               = LengthError("password length is invalid")
	ErrPasswordMismatch             = InvalidError("passwords do not match")
	ErrRateLimiting                 = ProcessError("rate limiting")
	ErrReadOnlyDevice               = ProcessError("device is read only")
	ErrRecordCorrupted              = IntegrityError("account record corrupted")
	ErrRollback                     = IntegrityError("block rollback detected")
	ErrShortMessage                 = LengthError("message truncated")
	ErrThrottled                    = PermissionError("too many failed attempts")
	ErrTruncatedBlock               = IntegrityError("stored block has the wrong length")
	ErrUnauthorized                 = PermissionError("not authenticated")
	ErrUsernameLength               = LengthError("username length is invalid")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string     { return string(e) }
func (e IntegrityError) Error() string  { return string(e) }
func (e InvalidError) Error() string    { return string(e) }
func (e LengthError) Error() string     { return string(e) }
func (e NotFoundError) Error() string   { return string(e) }
func (e PermissionError) Error() string { return string(e) }
func (e ProcessError) Error() string    { return string(e) }
func (e RangeError) Error() string      { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool     { _, ok := e.(ExistsError); return ok }
func IsErrIntegrity(e error) bool  { _, ok := e.(IntegrityError); return ok }
func IsErrInvalid(e error) bool    { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool     { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool   { _, ok := e.(NotFoundError); return ok }
func IsErrPermission(e error) bool { _, ok := e.(PermissionError); return ok }
func IsErrProcess(e error) bool    { _, ok := e.(ProcessError); return ok }
func IsErrRange(e error) bool      { _, ok := e.(RangeError); return ok }
