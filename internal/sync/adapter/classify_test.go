package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAlreadyRegistered(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "registry duplicate message",
			body: `{"mensaje":"El usuario ya está registrado en el sistema"}`,
			want: true,
		},
		{
			name: "unaccented variant",
			body: "el usuario ya esta registrado",
			want: true,
		},
		{
			name: "case insensitive",
			body: "YA EXISTE el usuario",
			want: true,
		},
		{
			name: "english backend leak",
			body: "user already exists",
			want: true,
		},
		{
			name: "database constraint text",
			body: "ERROR: duplicate key value violates unique constraint",
			want: true,
		},
		{
			name: "unrelated validation error",
			body: `{"mensaje":"cedula inválida"}`,
			want: false,
		},
		{
			name: "empty body",
			body: "",
			want: false,
		},
		{
			name: "server error page",
			body: "<html>500 Internal Server Error</html>",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAlreadyRegistered(tt.body))
		})
	}
}
