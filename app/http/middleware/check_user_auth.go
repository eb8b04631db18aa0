// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sk-labs/logintel/app/pkg/e"
	apiJWT "github.com/sk-labs/logintel/app/pkg/jwt"
)

// CheckUserAuth returns middleware that validates a user session token.
//
// Returns:
//   - gin.HandlerFunc: middleware that aborts unauthorized requests.
//
// Behavior:
//   - Parses and verifies the Bearer JWT from the Authorization header.
//   - Writes localized error response and aborts request on failure.
//   - Injects user_id into the Gin context for downstream handlers.
func (m middleware) CheckUserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		errCode, err := checkUserToken(c)
		if errCode != e.SUCCESS {
			m.i18n.JSON(c, errCode, nil, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkUserToken validates a JWT token and injects user identity into Gin context.
//
// Parameters:
//   - c: current Gin context carrying HTTP headers.
//
// Returns:
//   - errCode: application-level error code.
//   - err: parsing or validation error, nil on success.
func checkUserToken(c *gin.Context) (errCode int, err error) {
	errCode = e.InvalidParams

	token := strings.TrimPrefix(c.Request.Header.Get("Authorization"), "Bearer ")
	if token != "" {
		var userClaims *apiJWT.UserClaims

		errCode = e.SUCCESS

		userClaims, err = apiJWT.ParseUserAuth(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				errCode = e.AuthorizationExpired
			} else {
				errCode = e.Unauthorized
			}
		} else {
			c.Set("user_id", userClaims.UserID.String())
			c.Set("email", userClaims.Email)
		}
	}

	return
}
