package domain

import (
	dErrors "hcen/pkg/domain-errors"
)

// Cedula is the national identity number. Together with the document type it
// uniquely identifies a person across all tenants; the central registry keys
// user records by it, which is what makes concurrent registration attempts
// from independent clinics safe to retry.
type Cedula string

// ParseCedula validates a cedula: 6 to 9 digits, no separators.
// Formatting with dots and dashes must be stripped by the caller.
func ParseCedula(s string) (Cedula, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "cedula is required")
	}
	if len(s) < 6 || len(s) > 9 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "cedula must be 6 to 9 digits")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "cedula must contain only digits")
		}
	}
	return Cedula(s), nil
}

func (c Cedula) IsZero() bool   { return c == "" }
func (c Cedula) String() string { return string(c) }

// DocumentType is the kind of identity document backing a cedula.
type DocumentType string

const (
	DocumentTypeCI       DocumentType = "CI"
	DocumentTypePassport DocumentType = "PASAPORTE"
	DocumentTypeOther    DocumentType = "OTRO"
)

// ParseDocumentType validates a wire-level document type string.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocumentTypeCI, DocumentTypePassport, DocumentTypeOther:
		return DocumentType(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown document type: "+s)
}

func (d DocumentType) String() string { return string(d) }
func (d DocumentType) IsValid() bool {
	_, err := ParseDocumentType(string(d))
	return err == nil
}
