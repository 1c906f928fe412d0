package jwttoken

import (
	authmw "github.com/web-lizzard/review-genie/pkg/platform/middleware/auth"
)

// JWTServiceAdapter exposes JWTService through the middleware's validator port.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{Subject: claims.Subject, JTI: claims.ID, Scope: claims.Scope}, nil
}
