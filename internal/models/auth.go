package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated operator identity.
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LoginRequest is the stub login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
