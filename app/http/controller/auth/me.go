// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// MeOrg is one organization in the authenticated user's membership list.
type MeOrg struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MeRepData is the response payload for the current-session profile view.
type MeRepData struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Orgs  []MeOrg `json:"organizations"`
}

// Me returns a Gin handler exposing the authenticated user's profile and
// organization memberships, mirroring the original /auth/me endpoint.
//
// Returns:
//   - gin.HandlerFunc: request handler for the current-session profile.
func (h handler) Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID, _ := c.Get("user_id")
		userID, err := uuid.Parse(rawID.(string))
		if err != nil {
			h.i18n.JSON(c, e.Unauthorized, nil, err)
			return
		}

		u, err := h.repo.GetByID(userID)
		if err != nil {
			h.i18n.JSON(c, e.UserNotFound, nil, err)
			return
		}

		orgs, err := h.repo.ListOrgsForUser(userID)
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		data := &MeRepData{ID: u.ID.String(), Name: u.Name, Email: u.Email}
		for _, o := range orgs {
			data.Orgs = append(data.Orgs, MeOrg{ID: o.ID.String(), Name: o.Name})
		}

		h.i18n.JSON(c, e.SUCCESS, data, nil)
	}
}
