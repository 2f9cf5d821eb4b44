// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised       = ExistsError("already initialised")
	ErrAssetNotFound            = NotFoundError("asset not found")
	ErrAssetValueTooLong        = InvalidError("asset value too long")
	ErrCannotDecodeAccount      = InvalidError("cannot decode account")
	ErrChecksumMismatch         = ProcessError("checksum mismatch")
	ErrDatabaseVersionMismatch  = ProcessError("database version mismatch")
	ErrIdenticalParticipants    = InvalidError("identical participants")
	ErrInsufficientAssets       = ProcessError("insufficient assets")
	ErrInsufficientFunds        = ProcessError("insufficient funds")
	ErrInvalidCount             = InvalidError("invalid count")
	ErrInvalidFeeStrategy       = InvalidError("invalid fee strategy")
	ErrInvalidItem              = InvalidError("invalid item")
	ErrInvalidKeyLength         = InvalidError("invalid key length")
	ErrInvalidKeyType           = InvalidError("invalid key type")
	ErrInvalidLoggerChannel     = InvalidError("invalid logger channel")
	ErrInvalidSignature         = InvalidError("invalid signature")
	ErrMemoTooLong              = InvalidError("memo too long")
	ErrNotAssetId               = InvalidError("not an asset id")
	ErrNotInitialised           = NotFoundError("not initialised")
	ErrNotPublicKey             = InvalidError("not public key")
	ErrNotTransactionPack       = InvalidError("not transaction pack")
	ErrSignatureTooLong         = InvalidError("signature too long")
	ErrTransactionAlreadyExists = ExistsError("transaction already exists")
	ErrTransactionInUse         = ProcessError("transaction in use")
	ErrWalletRecordCorrupt      = ProcessError("wallet record corrupt")
	ErrWrongNetworkForPublicKey = InvalidError("wrong network for public key")
)

// Error - the error interface base method
func (e GenericError) Error() string { return string(e) }

// Error - the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// IsErrExists - determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
