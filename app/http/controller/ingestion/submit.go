// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package ingestion

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ingestionModel "github.com/sk-labs/logintel/app/model/ingestion"
	"github.com/sk-labs/logintel/app/pkg/e"
)

// maxUploadBytes caps the decoded size of an uploaded log file before it
// ever reaches the coordinator's own max_blob_bytes check.
const maxUploadBytes = 64 << 20

// SubmitRepData is the response payload for a newly accepted ingestion.
type SubmitRepData struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PasteReqParams is the request body for pasting raw log text directly.
type PasteReqParams struct {
	Text string `json:"text" binding:"required,min=1"`
}

func (h handler) submit(c *gin.Context, projectID uuid.UUID, sourceType, text string) {
	ing, err := h.coordinator.Submit(projectID, sourceType, text)
	if err != nil {
		h.i18n.JSON(c, e.BlobTooLarge, nil, err)
		return
	}

	h.i18n.JSON(c, e.SUCCESS, &SubmitRepData{ID: ing.ID.String(), Status: ing.Status}, nil)
}

// Submit returns a Gin handler accepting pasted raw log text, saving it to
// the blob store and enqueuing the processing job.
func (h handler) Submit() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, projectID, _, ok := h.scope(c)
		if !ok {
			return
		}

		var params PasteReqParams
		if err := c.ShouldBindJSON(&params); err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		h.submit(c, projectID, ingestionModel.SourceTypePaste, params.Text)
	}
}

// Upload returns a Gin handler accepting a multipart file upload, decoding
// it as UTF-8 text before saving it to the blob store and enqueuing the
// processing job.
func (h handler) Upload() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, projectID, _, ok := h.scope(c)
		if !ok {
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}
		defer file.Close()

		body, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			h.i18n.JSON(c, e.ERROR, nil, err)
			return
		}

		h.submit(c, projectID, ingestionModel.SourceTypeUpload, string(body))
	}
}
