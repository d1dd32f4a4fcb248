package jwttoken

import (
	"hcen/internal/platform/middleware"
	id "hcen/pkg/domain"
	dErrors "hcen/pkg/domain-errors"
)

// JWTServiceAdapter adapts JWTService to the middleware.JWTValidator
// contract, translating string claims into domain ids.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(claims.TenantID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries an invalid tenant id")
	}
	return &middleware.JWTClaims{
		TenantID: tenantID,
		Subject:  claims.Subject,
	}, nil
}
