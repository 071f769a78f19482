// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	CapacityError GenericError
	ExistsError   GenericError
	InvalidError  GenericError
	NotFoundError GenericError
	ProcessError  GenericError
	RecordError   GenericError
)

// common errors - keep in alphabetic order
var (
	AlreadyCompleted        = ExistsError("block already completed")
	AlreadyInProgress       = ExistsError("block already in progress")
	AlreadyInitialised      = ProcessError("already initialised")
	BasisInsufficient       = InvalidError("prime basis does not cover block")
	BlockNotPlanned         = NotFoundError("block not planned")
	BlockSizeMismatch       = InvalidError("block size differs from journal")
	CapacityExceeded        = CapacityError("in progress set is full")
	ConfigurationNotTable   = InvalidError("configuration does not return a table")
	CorruptBlockRecord      = RecordError("corrupt block record")
	CorruptJournal          = RecordError("corrupt journal")
	CorruptStream           = RecordError("corrupt encoded stream")
	EmptyPayload            = InvalidError("empty payload")
	GenesisNotCompleted     = CapacityError("genesis block not completed")
	GenesisNotPlanned       = NotFoundError("genesis block not planned")
	InvalidAlphabet         = InvalidError("invalid alphabet")
	InvalidBlockCount       = InvalidError("invalid block count")
	InvalidBlockName        = InvalidError("invalid block name")
	InvalidBlockRange       = InvalidError("invalid block range")
	InvalidBlockSize        = InvalidError("invalid block size")
	InvalidChain            = RecordError("chain pointers are inconsistent")
	InvalidCount            = InvalidError("invalid count")
	InvalidMaxParallel      = InvalidError("max parallel files must be positive")
	InvalidStoreBackend     = InvalidError("invalid store backend")
	InvalidSymbol           = InvalidError("symbol not in alphabet")
	JournalNotFound         = NotFoundError("journal not found")
	NegativeValue           = InvalidError("negative value")
	NoBlockAvailable        = NotFoundError("no block available")
	NotGenesisSegment       = InvalidError("segment does not start at zero")
	NotInProgress           = NotFoundError("block not in progress")
	NotInitialised          = ProcessError("not initialised")
	SegmentNotSieved        = ProcessError("segment not sieved")
	UnterminatedEscapeToken = RecordError("unterminated escape token")
	UnterminatedTailToken   = RecordError("unterminated tail token")
	ValueOverflow           = InvalidError("value overflows 64 bits")
	WrongSegmentState       = ProcessError("segment in wrong state")
)

// the error interface methods
func (e GenericError) Error() string  { return string(e) }
func (e CapacityError) Error() string { return string(e) }
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// IOError - a persistence operation that did not complete
type IOError struct {
	Op   string
	Name string
	Err  error
}

// IOFailure - wrap an underlying error from a persistence operation
func IOFailure(op string, name string, err error) error {
	return &IOError{
		Op:   op,
		Name: name,
		Err:  err,
	}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Op, e.Name, e.Err)
}

// Unwrap - give access to the underlying error
func (e *IOError) Unwrap() error {
	return e.Err
}

// determine the class of an error
func IsErrCapacity(e error) bool { _, ok := e.(CapacityError); return ok }
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool   { _, ok := e.(RecordError); return ok }
func IsErrIO(e error) bool       { _, ok := e.(*IOError); return ok }
