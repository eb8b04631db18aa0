// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package org

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// CreateReqParams is the request body for creating an organization.
type CreateReqParams struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// CreateRepData is the response payload for a created organization.
type CreateRepData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Create returns a Gin handler creating an organization owned by the
// authenticated caller, who becomes its admin member.
func (h handler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		var params CreateReqParams
		if err := c.ShouldBindJSON(&params); err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		rawID, _ := c.Get("user_id")
		userID, err := uuid.Parse(rawID.(string))
		if err != nil {
			h.i18n.JSON(c, e.Unauthorized, nil, err)
			return
		}

		o, err := h.repo.Create(params.Name, userID)
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, &CreateRepData{ID: o.ID.String(), Name: o.Name}, nil)
	}
}
