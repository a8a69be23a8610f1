package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RawReadEvent is the inbound unit from the RFID vendor relay. It is
// transient and never persisted as-is.
type RawReadEvent struct {
	EventID   int64
	ChipID    string
	ReaderID  string
	Timestamp time.Time
	// RSSI carries optional signal-strength metadata. It is stored
	// alongside the record but never interpreted.
	RSSI json.RawMessage
}

// RejectionKind classifies why an inbound read was not turned into a
// split time record.
type RejectionKind string

const (
	RejectionUnauthorized       RejectionKind = "unauthorized"
	RejectionUnknownChip        RejectionKind = "unknown_chip"
	RejectionUnknownReader      RejectionKind = "unknown_reader"
	RejectionDuplicateRead      RejectionKind = "duplicate_read"
	RejectionPersistenceFailure RejectionKind = "persistence_failure"
)

// Retryable reports whether the caller should retry the same request.
// Only system faults qualify; everything else is either a caller
// problem or a benign outcome.
func (k RejectionKind) Retryable() bool {
	return k == RejectionPersistenceFailure
}

// Rejection is the typed outcome for every non-created pipeline exit.
type Rejection struct {
	Kind   RejectionKind
	Reason string
	cause  error
}

func (r *Rejection) Error() string {
	if r.cause != nil {
		return fmt.Sprintf("%s: %s: %v", r.Kind, r.Reason, r.cause)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.cause
}

// Reject builds a Rejection with a formatted reason.
func Reject(kind RejectionKind, format string, args ...interface{}) *Rejection {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// RejectWithCause wraps an underlying error, preserving it for
// errors.Is/As chains.
func RejectWithCause(kind RejectionKind, cause error, format string, args ...interface{}) *Rejection {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...), cause: cause}
}

// AsRejection extracts a Rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// ErrNotFound signals that a scoped lookup matched nothing. It is an
// expected outcome for unregistered hardware, not a system fault.
var ErrNotFound = errors.New("not found")
