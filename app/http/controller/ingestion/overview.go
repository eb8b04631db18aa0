// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"github.com/gin-gonic/gin"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// Overview returns a Gin handler returning the ingestion-level summary:
// event/time bounds, level and service histograms, top fingerprint groups,
// and the finding list.
func (h handler) Overview() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		overview, err := h.query.Overview(ingestionID)
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, overview, nil)
	}
}
