// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// Findings returns a Gin handler listing every finding for an ingestion.
func (h handler) Findings() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		findings, err := h.repo.ListFindings(ingestionID)
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, findings, nil)
	}
}

// FindingDetail returns a Gin handler returning one finding plus its
// evidence event preview.
func (h handler) FindingDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		findingID, err := uuid.Parse(c.Param("finding_id"))
		if err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		detail, err := h.query.FindingDetail(ingestionID, findingID)
		if err != nil {
			h.i18n.JSON(c, e.FindingNotFound, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, detail, nil)
	}
}
