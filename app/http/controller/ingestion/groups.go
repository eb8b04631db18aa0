// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// Groups returns a Gin handler listing offset-paginated top fingerprint
// groups for an ingestion.
func (h handler) Groups() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		page, err := h.query.TopFingerprints(ingestionID, offset, limit)
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, page, nil)
	}
}

// GroupOverview returns a Gin handler returning one fingerprint group's
// member count plus sample/latest evidence events.
func (h handler) GroupOverview() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		fingerprint := c.Param("fingerprint")

		overview, err := h.query.GroupOverview(ingestionID, fingerprint)
		if err != nil {
			h.i18n.JSON(c, e.FingerprintNotFound, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, overview, nil)
	}
}
