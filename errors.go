package torctl

import "fmt"

// ErrTransportClosed is the sentinel wrapped by every TransportClosedError.
// Compare against it with errors.Is.
var ErrTransportClosed = fmt.Errorf("torctl: transport closed")

// ErrCanceled is the sentinel wrapped by every CanceledError.
var ErrCanceled = fmt.Errorf("torctl: canceled")

// ProtocolError reports a reply that violated the control-protocol wire
// grammar. It is fatal for the reader: once returned from the reader loop
// it is latched on the Engine and every subsequent Exec fails with it.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "torctl: protocol error: " + e.Msg }

// ServerError reports a well-formed reply whose first line carries a
// non-2xx status. The connection remains usable after a ServerError.
type ServerError struct {
	Status  string
	Message string
}

func (e *ServerError) Error() string { return "torctl: " + e.Status + " " + e.Message }

// TransportClosedError reports that the underlying stream ended or failed.
// It is fatal for the reader and latched; every pending and future Exec
// call observes it.
type TransportClosedError struct {
	Cause error
}

func (e *TransportClosedError) Error() string {
	if e.Cause == nil {
		return ErrTransportClosed.Error()
	}
	return ErrTransportClosed.Error() + ": " + e.Cause.Error()
}

func (e *TransportClosedError) Unwrap() error { return ErrTransportClosed }

// CanceledError reports that a waiter was canceled by its caller or by
// reader shutdown before a reply arrived.
type CanceledError struct{}

func (e *CanceledError) Error() string { return ErrCanceled.Error() }

func (e *CanceledError) Unwrap() error { return ErrCanceled }

// InvalidArgumentError is surfaced by the Controller facade before any
// bytes are written to the wire.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return "torctl: invalid argument: " + e.Msg }
