package models

import "fmt"

// Status classifies the outcome of one sync attempt.
type Status string

const (
	// StatusSuccess means the central registry accepted the record.
	StatusSuccess Status = "success"
	// StatusAlreadyExisted means the central registry already had the record.
	// Retries and concurrent registrations from independent clinics are
	// expected, so this is a successful idempotent no-op, never an error.
	StatusAlreadyExisted Status = "already_existed"
	// StatusFailed means the attempt did not reach a success state; the
	// record stays pending and the next sweep retries it.
	StatusFailed Status = "failed"
)

// SyncResult is the outcome of one sync attempt. Adapters return it instead
// of errors for all expected failure modes (network errors, validation
// rejections, duplicates); only the caller decides what to do with the local
// record based on it.
type SyncResult struct {
	Status      Status
	Message     string
	ErrorDetail string // populated only when Status is StatusFailed
}

// Ok reports whether the attempt should clear the pending sentinel.
// AlreadyExisted counts: whichever attempt observes it gets the same outcome
// class as a first successful registration.
func (r SyncResult) Ok() bool {
	return r.Status == StatusSuccess || r.Status == StatusAlreadyExisted
}

// Success builds a successful result.
func Success(message string) SyncResult {
	return SyncResult{Status: StatusSuccess, Message: message}
}

// AlreadyExisted builds the idempotent-duplicate result.
func AlreadyExisted(message string) SyncResult {
	return SyncResult{Status: StatusAlreadyExisted, Message: message}
}

// Failed builds a failed result with diagnostic detail.
func Failed(message, detail string) SyncResult {
	return SyncResult{Status: StatusFailed, Message: message, ErrorDetail: detail}
}

// Failedf builds a failed result with a formatted detail string.
func Failedf(message, format string, args ...any) SyncResult {
	return Failed(message, fmt.Sprintf(format, args...))
}
