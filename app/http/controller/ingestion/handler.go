// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package ingestion implements the ingestion HTTP endpoints: submitting raw
// log text, and reading back the parsed events, fingerprint groups,
// findings, and AI-generated insights they produce.
package ingestion

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sk-pkg/i18n"
	"github.com/sk-pkg/logger"
	"gorm.io/gorm"

	"github.com/sk-labs/logintel/app/pkg/e"
	ingestionRepo "github.com/sk-labs/logintel/app/repository/ingestion"
	orgRepo "github.com/sk-labs/logintel/app/repository/org"
	projectRepo "github.com/sk-labs/logintel/app/repository/project"
	ingestionSvc "github.com/sk-labs/logintel/app/service/ingestion"
	"github.com/sk-labs/logintel/internal/blobstore"
	"github.com/sk-labs/logintel/internal/insight"
)

type (
	// Handler exposes ingestion HTTP endpoints.
	Handler interface {
		i()
		ctx(c *gin.Context) context.Context
		Submit() gin.HandlerFunc
		Upload() gin.HandlerFunc
		Get() gin.HandlerFunc
		Overview() gin.HandlerFunc
		ListEvents() gin.HandlerFunc
		Groups() gin.HandlerFunc
		GroupOverview() gin.HandlerFunc
		Findings() gin.HandlerFunc
		FindingDetail() gin.HandlerFunc
		Insights() gin.HandlerFunc
		Delete() gin.HandlerFunc
	}

	handler struct {
		logger      *logger.Manager
		i18n        *i18n.Manager
		coordinator ingestionSvc.Coordinator
		query       ingestionSvc.Query
		repo        ingestionRepo.Repo
		projects    projectRepo.Repo
		orgs        orgRepo.Repo
		insight     *insight.Client
		blobs       blobstore.Store
	}
)

func (h handler) i() {}

func (h handler) ctx(c *gin.Context) context.Context {
	return c.Request.Context()
}

// New creates an ingestion Handler.
//
// Parameters:
//   - logger: structured logger manager.
//   - i18n: i18n manager for localized JSON responses.
//   - db: database used by the read-side repositories.
//   - coordinator: ingestion coordinator used to accept new submissions.
//   - query: read-side query service over events/findings.
//   - insightClient: optional client used by the insights endpoint, nil
//     disables it with InsightUnavailable.
//
// Returns:
//   - Handler: ready-to-register ingestion handler.
func New(logger *logger.Manager, i18n *i18n.Manager, db *gorm.DB, coordinator ingestionSvc.Coordinator, query ingestionSvc.Query, insightClient *insight.Client, blobs blobstore.Store) Handler {
	return &handler{
		logger:      logger,
		i18n:        i18n,
		coordinator: coordinator,
		query:       query,
		repo:        ingestionRepo.NewRepo(db),
		projects:    projectRepo.NewRepo(db),
		orgs:        orgRepo.NewRepo(db),
		insight:     insightClient,
		blobs:       blobs,
	}
}

// scope resolves and validates the org_id/project_id/id path parameters,
// requiring the caller to be a member of org_id and the ingestion to
// belong to project_id under org_id. Writes a localized error and returns
// ok=false on any failure.
func (h handler) scope(c *gin.Context) (orgID, projectID, ingestionID uuid.UUID, ok bool) {
	var err error

	if orgID, err = uuid.Parse(c.Param("org_id")); err != nil {
		h.i18n.JSON(c, e.InvalidParams, nil, err)
		return
	}
	if projectID, err = uuid.Parse(c.Param("project_id")); err != nil {
		h.i18n.JSON(c, e.InvalidParams, nil, err)
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		h.i18n.JSON(c, e.Unauthorized, nil, err)
		return
	}

	member, err := h.orgs.IsMember(orgID, userID)
	if err != nil {
		h.i18n.JSON(c, e.ERROR, nil, err)
		return
	}
	if !member {
		h.i18n.JSON(c, e.NotOrgMember, nil, nil)
		return
	}

	if _, err = h.projects.GetScoped(projectID, orgID); err != nil {
		h.i18n.JSON(c, e.ProjectNotFound, nil, err)
		return
	}

	if idParam := c.Param("id"); idParam != "" {
		if ingestionID, err = uuid.Parse(idParam); err != nil {
			h.i18n.JSON(c, e.InvalidParams, nil, err)
			return
		}

		if _, err = h.repo.GetScoped(ingestionID, projectID, orgID); err != nil {
			h.i18n.JSON(c, e.IngestionNotFound, nil, err)
			return
		}
	}

	ok = true
	return
}
