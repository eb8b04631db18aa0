// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package project

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// ListRepItem is one project in a listing response.
type ListRepItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List returns a Gin handler listing every project under the org_id path
// parameter, requiring the caller to be a member of that organization.
func (h handler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param("org_id"))
		if err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		if !h.requireMembership(c, orgID) {
			return
		}

		projects, err := h.repo.ListByOrg(orgID)
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		items := make([]ListRepItem, 0, len(projects))
		for _, p := range projects {
			items = append(items, ListRepItem{ID: p.ID.String(), Name: p.Name})
		}

		h.i18n.JSON(c, e.SUCCESS, items, nil)
	}
}
