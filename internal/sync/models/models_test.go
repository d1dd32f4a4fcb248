package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "hcen/pkg/domain"
)

func validUser() UserSyncRequest {
	return UserSyncRequest{
		Cedula:       id.Cedula("19998888"),
		DocumentType: id.DocumentTypeCI,
		FirstName:    "Ana",
		FirstSurname: "Pérez",
	}
}

func TestUserSyncRequestValidate(t *testing.T) {
	t.Run("valid minimal request", func(t *testing.T) {
		require.NoError(t, validUser().Validate())
	})

	t.Run("missing required fields", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*UserSyncRequest)
		}{
			{"cedula", func(u *UserSyncRequest) { u.Cedula = "" }},
			{"tipoDocumento", func(u *UserSyncRequest) { u.DocumentType = "" }},
			{"primerNombre", func(u *UserSyncRequest) { u.FirstName = "" }},
			{"primerApellido", func(u *UserSyncRequest) { u.FirstSurname = "" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				user := validUser()
				tt.mutate(&user)
				require.Error(t, user.Validate())
			})
		}
	})
}

func TestUserSyncRequestWireFormat(t *testing.T) {
	// Field names are fixed by the national interoperability contract.
	user := validUser()
	raw, err := json.Marshal(user)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "19998888", fields["cedula"])
	assert.Equal(t, "CI", fields["tipoDocumento"])
	assert.Equal(t, "Ana", fields["primerNombre"])
	assert.Equal(t, "Pérez", fields["primerApellido"])
	assert.NotContains(t, fields, "segundoNombre")
	assert.NotContains(t, fields, "email")
}

func validConfirmation() ConfirmationMessage {
	return ConfirmationMessage{
		DocumentID: id.DocumentID(uuid.New()),
		HistoryID:  id.HistoryID("HIST-42"),
		TenantID:   id.TenantID(uuid.New()),
		Cedula:     id.Cedula("19998888"),
		Success:    true,
		Timestamp:  time.Now(),
		MessageID:  id.NewMessageID(),
	}
}

func TestConfirmationMessageValidate(t *testing.T) {
	t.Run("valid success confirmation", func(t *testing.T) {
		require.NoError(t, validConfirmation().Validate())
	})

	t.Run("valid failure confirmation", func(t *testing.T) {
		confirmation := validConfirmation()
		confirmation.Success = false
		confirmation.HistoryID = ""
		confirmation.ErrorMessage = "usuario desconocido"
		require.NoError(t, confirmation.Validate())
	})

	t.Run("missing message id", func(t *testing.T) {
		confirmation := validConfirmation()
		confirmation.MessageID = id.MessageID{}
		require.Error(t, confirmation.Validate())
	})

	t.Run("success without history id", func(t *testing.T) {
		confirmation := validConfirmation()
		confirmation.HistoryID = ""
		require.Error(t, confirmation.Validate())
	})

	t.Run("success carrying an error message", func(t *testing.T) {
		confirmation := validConfirmation()
		confirmation.ErrorMessage = "boom"
		require.Error(t, confirmation.Validate())
	})

	t.Run("failure without error message", func(t *testing.T) {
		confirmation := validConfirmation()
		confirmation.Success = false
		confirmation.HistoryID = ""
		require.Error(t, confirmation.Validate())
	})

	t.Run("failure carrying a history id", func(t *testing.T) {
		confirmation := validConfirmation()
		confirmation.Success = false
		confirmation.ErrorMessage = "boom"
		require.Error(t, confirmation.Validate())
	})
}

func TestSyncStateTransitions(t *testing.T) {
	t.Run("pending has no history id", func(t *testing.T) {
		assert.True(t, Pending.IsPending())
		_, set := Pending.HistoryID()
		assert.False(t, set)
	})

	t.Run("synced exposes its history id", func(t *testing.T) {
		state := Synced(id.HistoryID("HIST-7"))
		assert.False(t, state.IsPending())
		ref, set := state.HistoryID()
		assert.True(t, set)
		assert.Equal(t, id.HistoryID("HIST-7"), ref)
	})
}
