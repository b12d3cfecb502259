// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import "fmt"

// Kind identifies a class of error returned by this package.
type Kind int

// Error kinds.
const (
	KindInvalidSignature Kind = iota
	KindInvalidHeaderCRC
	KindInvalidEntriesCRC
	KindInvalidPartitionBoundaries
	KindPartitionOverlap
	KindInvalidPartitionNumber
	KindNoSpaceLeft
	KindReadError
	KindWriteError
	KindInvalidSectorSize
	KindConflictingGUID
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSignature:
		return "InvalidSignature"
	case KindInvalidHeaderCRC:
		return "InvalidHeaderCRC"
	case KindInvalidEntriesCRC:
		return "InvalidEntriesCRC"
	case KindInvalidPartitionBoundaries:
		return "InvalidPartitionBoundaries"
	case KindPartitionOverlap:
		return "PartitionOverlap"
	case KindInvalidPartitionNumber:
		return "InvalidPartitionNumber"
	case KindNoSpaceLeft:
		return "NoSpaceLeft"
	case KindReadError:
		return "ReadError"
	case KindWriteError:
		return "WriteError"
	case KindInvalidSectorSize:
		return "InvalidSectorSize"
	case KindConflictingGUID:
		return "ConflictingGUID"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by this package.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, ErrPartitionOverlap) works without comparing messages.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == other.Kind
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Sentinel values usable with errors.Is. Each carries no message or cause;
// compare with errors.Is(err, gpt.ErrPartitionOverlap), not with ==.
var (
	ErrInvalidSignature            = &Error{Kind: KindInvalidSignature}
	ErrInvalidHeaderCRC            = &Error{Kind: KindInvalidHeaderCRC}
	ErrInvalidEntriesCRC           = &Error{Kind: KindInvalidEntriesCRC}
	ErrInvalidPartitionBoundaries  = &Error{Kind: KindInvalidPartitionBoundaries}
	ErrPartitionOverlap            = &Error{Kind: KindPartitionOverlap}
	ErrInvalidPartitionNumber      = &Error{Kind: KindInvalidPartitionNumber}
	ErrNoSpaceLeft                 = &Error{Kind: KindNoSpaceLeft}
	ErrReadError                   = &Error{Kind: KindReadError}
	ErrWriteError                  = &Error{Kind: KindWriteError}
	ErrInvalidSectorSize           = &Error{Kind: KindInvalidSectorSize}
	ErrConflictingGUID             = &Error{Kind: KindConflictingGUID}
)
