// Package wavetile structured error types
package wavetile

import (
	"errors"
	"fmt"
)

// ErrorKind represents categories of errors
type ErrorKind int

const (
	// KindShape marks tile geometry or element type violations, reported before any work runs
	KindShape ErrorKind = iota
	// KindAllocationFailed marks device memory allocation failures
	KindAllocationFailed
	// KindTransferFailed marks host/device copy failures
	KindTransferFailed
	// KindDeviceFault marks kernel failures surfaced at synchronization
	KindDeviceFault
	// KindInvalidArg marks bad arguments to the runtime API
	KindInvalidArg
)

// Error represents a structured error with context
type Error struct {
	Kind    ErrorKind
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wavetile %s error in %s: %s (caused by: %v)",
			e.Kind, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("wavetile %s error in %s: %s", e.Kind, e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error kind as a string
func (k ErrorKind) String() string {
	switch k {
	case KindShape:
		return "Shape"
	case KindAllocationFailed:
		return "AllocationFailed"
	case KindTransferFailed:
		return "TransferFailed"
	case KindDeviceFault:
		return "DeviceFault"
	case KindInvalidArg:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// NewShapeError creates a tile shape error
func NewShapeError(op string, format string, args ...any) error {
	return &Error{
		Kind:    KindShape,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewAllocationError creates a device allocation error
func NewAllocationError(op string, message string, err error) error {
	return &Error{
		Kind:    KindAllocationFailed,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewTransferError creates a host/device copy error
func NewTransferError(op string, message string) error {
	return &Error{
		Kind:    KindTransferFailed,
		Op:      op,
		Message: message,
	}
}

// NewDeviceFault creates a device fault wrapping the kernel's failure
func NewDeviceFault(op string, message string, err error) error {
	return &Error{
		Kind:    KindDeviceFault,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &Error{
		Kind:    KindInvalidArg,
		Op:      op,
		Message: message,
	}
}

// Common pre-defined errors
var (
	// ErrInvalidSize indicates a non-positive allocation size
	ErrInvalidSize = NewAllocationError("Malloc", "size must be positive", nil)

	// ErrOutOfMemory indicates the device memory budget is exhausted
	ErrOutOfMemory = NewAllocationError("Malloc", "out of device memory", nil)

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewInvalidArgError("Free", "double free detected")

	// ErrInvalidDevice indicates invalid device ID
	ErrInvalidDevice = NewInvalidArgError("SetDevice", "invalid device ID")
)

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsShapeError checks if an error is a tile shape error
func IsShapeError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindShape
}

// IsAllocationError checks if an error is an allocation failure
func IsAllocationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindAllocationFailed
}

// IsTransferError checks if an error is a transfer failure
func IsTransferError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransferFailed
}

// IsDeviceFault checks if an error is a device fault
func IsDeviceFault(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindDeviceFault
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInvalidArg
}
