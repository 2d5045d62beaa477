package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	GoogleID string   `json:"google_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	jwt.RegisteredClaims
}
