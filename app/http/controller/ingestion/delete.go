// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sk-labs/logintel/app/pkg/e"
)

// Delete returns a Gin handler removing an ingestion, its events, findings,
// and AI analyses, plus its raw blob.
func (h handler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, ingestionID, ok := h.scope(c)
		if !ok {
			return
		}

		if err := h.repo.Delete(ingestionID); err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		if err := h.blobs.Delete(ingestionID); err != nil {
			h.logger.Warn(h.ctx(c), "ingestion: failed to delete blob after row delete", zap.String("ingestion_id", ingestionID.String()), zap.Error(err))
		}

		h.i18n.JSON(c, e.SUCCESS, nil, nil)
	}
}
