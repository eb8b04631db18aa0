// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package jwt provides helpers for generating and parsing user session JWT tokens.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sk-labs/logintel/app"
	"github.com/sk-labs/logintel/app/model/user"
)

// UserClaims carries the authenticated user's identity across requests.
type UserClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// GenerateUserToken creates a signed JWT for an authenticated user session.
//
// Parameters:
//   - u: authenticated user entity used to fill token claims.
//   - expireTime: token lifetime.
//
// Returns:
//   - token: signed JWT string.
//   - err: signing error.
//
// Example:
//
//	token, err := jwt.GenerateUserToken(u, 24*time.Hour)
func GenerateUserToken(u *user.User, expireTime time.Duration) (token string, err error) {
	expTime := time.Now().Add(expireTime)
	claims := UserClaims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "logintel",
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(app.GetConfig().System.JwtSecret)

	return tokenClaims.SignedString(jwtSecret)
}

// ParseUserAuth parses and validates a user session JWT token.
//
// Parameters:
//   - token: JWT string from request authorization header.
//
// Returns:
//   - *UserClaims: parsed claims when token is valid.
//   - error: parsing or signature validation error.
func ParseUserAuth(token string) (*UserClaims, error) {
	jwtSecret := []byte(app.GetConfig().System.JwtSecret)

	tokenClaims, err := jwt.ParseWithClaims(token, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if tokenClaims != nil {
		if claims, ok := tokenClaims.Claims.(*UserClaims); ok && tokenClaims.Valid {
			return claims, nil
		}
	}

	return nil, err
}
