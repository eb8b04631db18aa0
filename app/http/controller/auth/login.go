// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/sk-labs/logintel/app/pkg/e"
	"github.com/sk-labs/logintel/app/pkg/jwt"
)

const userTokenExpireTime = 24 * time.Hour

// Login returns a Gin handler that verifies email/password credentials and
// issues a session JWT.
//
// Returns:
//   - gin.HandlerFunc: request handler for credential verification.
func (h handler) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.PostForm("email")
		password := c.PostForm("password")
		data := make(gin.H)

		errCode := e.InvalidParams
		var err error

		if email != "" && password != "" {
			u, lookupErr := h.repo.GetByEmail(email)
			errCode = e.InvalidCredentials
			if lookupErr == nil && u != nil {
				if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
					var token string
					token, err = jwt.GenerateUserToken(u, userTokenExpireTime)
					errCode = e.AuthorizationFail
					if err == nil {
						errCode = e.SUCCESS
						data["token"] = token
						data["expires_in"] = int(userTokenExpireTime.Seconds())
					}
				}
			}
		}

		h.i18n.JSON(c, errCode, data, err)
	}
}
