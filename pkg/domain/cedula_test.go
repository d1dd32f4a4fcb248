package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCedula(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "typical 8 digit cedula", input: "19998888"},
		{name: "minimum 6 digits", input: "123456"},
		{name: "maximum 9 digits", input: "123456789"},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "12345", wantErr: true},
		{name: "too long", input: "1234567890", wantErr: true},
		{name: "dots and dash not stripped", input: "1.999.888-8", wantErr: true},
		{name: "letters", input: "19998a88", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cedula, err := ParseCedula(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, cedula.String())
		})
	}
}

func TestParseDocumentType(t *testing.T) {
	for _, valid := range []string{"CI", "PASAPORTE", "OTRO"} {
		parsed, err := ParseDocumentType(valid)
		require.NoError(t, err)
		assert.True(t, parsed.IsValid())
	}

	_, err := ParseDocumentType("DNI")
	require.Error(t, err)
	assert.False(t, DocumentType("").IsValid())
}

// FuzzParseCedula verifies parsing never panics and accepted values
// round-trip unchanged.
func FuzzParseCedula(f *testing.F) {
	f.Add("")
	f.Add("19998888")
	f.Add("1.999.888-8")
	f.Add("'; DROP TABLE usuarios;--")
	f.Add(string([]byte{0x00, 0x01}))

	f.Fuzz(func(t *testing.T, input string) {
		cedula, err := ParseCedula(input)
		if err != nil {
			return
		}
		roundTrip, err2 := ParseCedula(cedula.String())
		if err2 != nil {
			t.Errorf("accepted cedula failed round-trip: %v", err2)
		}
		if roundTrip != cedula {
			t.Error("round-trip changed cedula value")
		}
	})
}
