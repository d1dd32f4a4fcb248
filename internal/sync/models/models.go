package models

import (
	"time"

	id "hcen/pkg/domain"
	dErrors "hcen/pkg/domain-errors"
)

// UserSyncRequest is the wire form of a health user pushed to the central
// registry. JSON field names follow the national interoperability contract,
// so they stay in Spanish regardless of transport (REST body or queue
// payload).
//
// The central registry is tenant-agnostic for users: TenantID only records
// which clinic originated the request, it is not part of the user's identity.
type UserSyncRequest struct {
	Cedula        id.Cedula       `json:"cedula"`
	DocumentType  id.DocumentType `json:"tipoDocumento"`
	FirstName     string          `json:"primerNombre"`
	SecondName    string          `json:"segundoNombre,omitempty"`
	FirstSurname  string          `json:"primerApellido"`
	SecondSurname string          `json:"segundoApellido,omitempty"`
	Email         string          `json:"email,omitempty"`
	BirthDate     *time.Time      `json:"fechaNacimiento,omitempty"`
	TenantID      *id.TenantID    `json:"tenantId,omitempty"`
}

// Validate checks the fields the central registry rejects as missing.
// A validation failure is not retryable: the sweep will keep failing until
// an operator fixes the local record.
func (r UserSyncRequest) Validate() error {
	if r.Cedula.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "cedula is required")
	}
	if !r.DocumentType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "tipoDocumento is required")
	}
	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "primerNombre is required")
	}
	if r.FirstSurname == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "primerApellido is required")
	}
	return nil
}

// DocumentSyncRequest is a clinical document pending centralization.
// (TenantID, DocumentID) is unique; a document is sync-eligible iff its local
// central reference is absent.
type DocumentSyncRequest struct {
	DocumentID id.DocumentID `json:"documentoId"`
	TenantID   id.TenantID   `json:"tenantId"`
	Cedula     id.Cedula     `json:"cedula"`
	CreatedAt  time.Time     `json:"fechaCreacion"`
	// MessageID is set only on the queue path, for tracing and correlation.
	MessageID id.MessageID `json:"mensajeId,omitempty"`
}

// ConfirmationMessage is sent by the central node back to the peripheral node
// on the asynchronous path. Exactly one confirmation is produced per received
// registration message, including duplicates.
type ConfirmationMessage struct {
	DocumentID   id.DocumentID `json:"documentoId"`
	HistoryID    id.HistoryID  `json:"historiaId,omitempty"`
	TenantID     id.TenantID   `json:"tenantId"`
	Cedula       id.Cedula     `json:"cedula"`
	Success      bool          `json:"exito"`
	ErrorMessage string        `json:"mensajeError,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	// MessageID echoes the original request's message id (correlation key).
	MessageID id.MessageID `json:"mensajeId"`
}

// Validate enforces the confirmation invariant: a history id on success, an
// error message on failure, never both and never neither.
func (m ConfirmationMessage) Validate() error {
	if m.MessageID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "confirmation missing message id")
	}
	if m.Success {
		if m.HistoryID.IsZero() {
			return dErrors.New(dErrors.CodeInvalidInput, "success confirmation missing history id")
		}
		if m.ErrorMessage != "" {
			return dErrors.New(dErrors.CodeInvalidInput, "success confirmation carries an error message")
		}
		return nil
	}
	if m.ErrorMessage == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "failure confirmation missing error message")
	}
	if !m.HistoryID.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "failure confirmation carries a history id")
	}
	return nil
}
