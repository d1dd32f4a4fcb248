package adapter

import "strings"

// duplicateMarkers are the response-body fragments the central registry is
// known to emit when a user is already registered. The central API does not
// yet expose a distinct error code for duplicates, so classification happens
// on the body text; keeping every known marker in one place contains the
// fragility until the endpoint grows a proper code.
// TODO: drop the text matching once the central registry returns a
// machine-readable duplicate code on /api/usuarios/registrar.
var duplicateMarkers = []string{
	"ya está registrado",
	"ya esta registrado",
	"ya existe",
	"ya existía",
	"ya existia",
	"already exists",
	"already registered",
	"duplicate key",
	"llave duplicada",
}

// isAlreadyRegistered reports whether a central response body indicates the
// user was already present. Matching is case-insensitive.
func isAlreadyRegistered(body string) bool {
	lowered := strings.ToLower(body)
	for _, marker := range duplicateMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
