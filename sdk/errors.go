package sdk

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrTimeout          = errors.New("response timeout")
	ErrNotTuned         = errors.New("reader not tuned")
)

// TransportError reports a link-level failure: timeout, disconnect or I/O.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Cause() error  { return e.Err }

// ProtocolError reports a malformed or unexpected response.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: protocol: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
func (e *ProtocolError) Cause() error  { return e.Err }

// InvalidArgumentError is returned before any transport I/O when a caller
// supplied value is out of range.
type InvalidArgumentError struct {
	Op     string
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Op, e.Field, e.Reason)
}

func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsProtocol(err error) bool {
	var target *ProtocolError
	return errors.As(err, &target)
}

func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

func invalidArg(op, field, format string, args ...any) error {
	return &InvalidArgumentError{Op: op, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func protocolErr(op, format string, args ...any) error {
	return &ProtocolError{Op: op, Err: errors.Errorf(format, args...)}
}
