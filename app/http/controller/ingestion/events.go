// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sk-labs/logintel/app/pkg/e"
	ingestionRepo "github.com/sk-labs/logintel/app/repository/ingestion"
	ingestionSvc "github.com/sk-labs/logintel/app/service/ingestion"
)

// ListEvents returns a Gin handler listing cursor-paginated events, applying
// the level/service/fingerprint/time/text filters carried as query params.
func (h handler) ListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		filter := ingestionRepo.EventFilter{
			Service:     c.Query("service"),
			Fingerprint: c.Query("fingerprint"),
			Q:           c.Query("q"),
		}

		if levels := c.Query("levels"); levels != "" {
			filter.Levels = ingestionSvc.NormalizeLevels(levels)
		}
		if cursor, err := strconv.Atoi(c.DefaultQuery("cursor", "0")); err == nil {
			filter.Cursor = cursor
		}
		if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
			filter.Limit = limit
		}
		if from := c.Query("ts_from"); from != "" {
			if t, err := time.Parse(time.RFC3339, from); err == nil {
				filter.TsFrom = &t
			}
		}
		if to := c.Query("ts_to"); to != "" {
			if t, err := time.Parse(time.RFC3339, to); err == nil {
				filter.TsTo = &t
			}
		}

		page, err := h.query.ListEvents(ingestionID, filter)
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, page, nil)
	}
}
