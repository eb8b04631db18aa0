// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"github.com/gin-gonic/gin"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// Get returns a Gin handler returning the ingestion summary row.
func (h handler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, projectID, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		ing, err := h.repo.GetScoped(ingestionID, projectID, orgID)
		if err != nil {
			h.i18n.JSON(c, e.IngestionNotFound, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, ing, nil)
	}
}
