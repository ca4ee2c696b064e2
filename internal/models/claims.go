package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are the access-token claims issued by the identity service.
// This API only verifies them; it never issues tokens.
type JWTClaims struct {
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	StudentID string `json:"studentId,omitempty"`
	jwt.RegisteredClaims
}
