// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sk-labs/logintel/app/model/user"
	"github.com/sk-labs/logintel/app/pkg/e"
)

type (
	// RegisterReqParams is the request payload for creating a user account.
	RegisterReqParams struct {
		Name     string `json:"name" form:"name" binding:"required"`
		Email    string `json:"email" form:"email" binding:"required,email"`
		Password string `json:"password" form:"password" binding:"required,min=8"`
	}

	// RegisterRepData is the response payload returned after registration.
	RegisterRepData struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
)

// Register returns a Gin handler that creates a user account plus a default
// organization owned by that user, mirroring the register endpoint's
// create_user + create_organization + add_user_to_organization sequence.
//
// Returns:
//   - gin.HandlerFunc: request handler for account registration.
func (h handler) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var params *RegisterReqParams
		var err error
		var data *RegisterRepData

		errCode := e.InvalidParams

		if err = c.ShouldBindJSON(&params); err == nil {
			_, lookupErr := h.repo.GetByEmail(params.Email)
			if lookupErr == nil {
				errCode = e.UserAlreadyExists
				h.i18n.JSON(c, errCode, nil, nil)
				return
			}
			if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
				h.i18n.JSON(c, e.ERROR, nil, lookupErr)
				return
			}

			var hash []byte
			hash, err = bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
			errCode = e.ERROR
			if err == nil {
				u := &user.User{Name: params.Name, Email: params.Email, PasswordHash: string(hash)}

				_, err = h.repo.CreateUser(u)
				if err == nil {
					_, err = h.repo.CreateOrgWithOwner(params.Name+"'s Organization", u.ID)
				}

				if err == nil {
					errCode = e.SUCCESS
					data = &RegisterRepData{ID: u.ID.String(), Name: u.Name, Email: u.Email}
				}
			}
		}

		h.i18n.JSON(c, errCode, data, err)
	}
}
