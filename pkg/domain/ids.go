package domain

import (
	"github.com/google/uuid"

	dErrors "hcen/pkg/domain-errors"
)

// Typed IDs prevent cross-type assignment at compile time. A TenantID can
// never be passed where a DocumentID is expected, which matters because the
// (tenantId, documentId) pair is the uniqueness key for clinical documents.

// TenantID identifies a clinic (peripheral tenant).
type TenantID uuid.UUID

// DocumentID identifies a clinical document within a tenant.
type DocumentID uuid.UUID

// MessageID identifies one queue message, used as the correlation and
// idempotency key for the asynchronous sync path.
type MessageID uuid.UUID

// HistoryID is the reference assigned by the central registry when a document
// is accepted into the national clinical history. Its presence on a local
// record is the sync sentinel: set means Synced, absent means PendingSync.
type HistoryID string

func (h HistoryID) IsZero() bool   { return h == "" }
func (h HistoryID) String() string { return string(h) }

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be nil")
	}
	return u, nil
}

// ParseTenantID validates and returns a TenantID.
func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(u), nil
}

// ParseDocumentID validates and returns a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(u), nil
}

// ParseMessageID validates and returns a MessageID.
func ParseMessageID(s string) (MessageID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return MessageID{}, err
	}
	return MessageID(u), nil
}

// NewMessageID returns a fresh random MessageID.
func NewMessageID() MessageID { return MessageID(uuid.New()) }

func (t TenantID) IsNil() bool      { return uuid.UUID(t) == uuid.Nil }
func (t TenantID) String() string   { return uuid.UUID(t).String() }
func (d DocumentID) IsNil() bool    { return uuid.UUID(d) == uuid.Nil }
func (d DocumentID) String() string { return uuid.UUID(d).String() }
func (m MessageID) IsNil() bool     { return uuid.UUID(m) == uuid.Nil }
func (m MessageID) String() string  { return uuid.UUID(m).String() }

// Text marshalling so the typed IDs serialize as UUID strings on the wire.
// Without these, encoding/json would render the underlying byte array.
//
// Unmarshalling is lenient about the nil UUID: queue payloads carry zero ids
// for fields that do not apply (a user confirmation has no document id), and
// semantic validation happens later, in ConfirmationMessage.Validate. The
// Parse functions stay strict for ids arriving through the HTTP surface.

func (t TenantID) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *TenantID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid tenant id format")
	}
	*t = TenantID(u)
	return nil
}

func (d DocumentID) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *DocumentID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid document id format")
	}
	*d = DocumentID(u)
	return nil
}

func (m MessageID) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *MessageID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid message id format")
	}
	*m = MessageID(u)
	return nil
}
