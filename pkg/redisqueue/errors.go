package redisqueue

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrShapeMismatch = errors.New("redisqueue: payload shape does not match mode")
	ErrStore         = errors.New("redisqueue: store failure")
	ErrProtocol      = errors.New("redisqueue: unexpected reply from store")
	ErrDecode        = errors.New("redisqueue: unable to decode message")
	ErrHandler       = errors.New("redisqueue: message handler panicked")
)

// ShapeMismatchError is returned by Encode and Enqueue when a payload does not
// match the queue mode.
type ShapeMismatchError struct {
	// ObjectMode is the mode the payload was checked against.
	ObjectMode bool
}

func (e *ShapeMismatchError) Error() string {
	if e.ObjectMode {
		return "redisqueue: Pushed item that was not object, when object_mode was true"
	}
	return "redisqueue: Pushed item that was object, when object_mode was false"
}

func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}

// StoreError wraps a failure reported by the store.
type StoreError struct {
	Op    string
	Queue string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("redisqueue: %s on queue %q: %v", e.Op, e.Queue, e.Err)
}

// Cause returns the store error, for errors.Cause.
func (e *StoreError) Cause() error {
	return e.Err
}

func (e *StoreError) Unwrap() error {
	return ErrStore
}

// Is reports whether target is the underlying store error, so that
// errors.Is(err, context.Canceled) keeps working through the wrapper.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore || errors.Is(e.Err, target)
}

// ProtocolError is reported when a pop reply is not a (queue, message) pair.
type ProtocolError struct {
	Queue string
	Reply []string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("redisqueue: bad number of replies from redis for queue %q: %d", e.Queue, len(e.Reply))
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}

// DecodeError is reported when a popped message cannot be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("redisqueue: unable to decode message: %v", e.Err)
}

// Cause returns the decoding error, for errors.Cause.
func (e *DecodeError) Cause() error {
	return e.Err
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// HandlerError is reported when a message handler panics.
type HandlerError struct {
	Queue string
	Value interface{}
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("redisqueue: message handler for queue %q panicked: %v", e.Queue, e.Value)
}

func (e *HandlerError) Unwrap() error {
	return ErrHandler
}

// Kind classifies err for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, ErrStore):
		return "store"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrHandler):
		return "handler"
	default:
		return "unknown"
	}
}
