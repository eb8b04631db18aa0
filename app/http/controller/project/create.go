// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package project

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// CreateReqParams is the request body for creating a project.
type CreateReqParams struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// CreateRepData is the response payload for a created project.
type CreateRepData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	OrgID string `json:"org_id"`
}

// Create returns a Gin handler creating a project under the org_id path
// parameter, requiring the caller to be a member of that organization.
func (h handler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param("org_id"))
		if err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		if !h.requireMembership(c, orgID) {
			return
		}

		var params CreateReqParams
		if err := c.ShouldBindJSON(&params); err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		p, err := h.repo.Create(orgID, params.Name)
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, &CreateRepData{ID: p.ID.String(), Name: p.Name, OrgID: p.OrgID.String()}, nil)
	}
}
