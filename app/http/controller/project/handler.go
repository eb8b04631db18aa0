// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package project implements the project HTTP endpoints: creating and
// listing projects scoped to an organization the caller belongs to.
package project

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sk-pkg/i18n"
	"github.com/sk-pkg/logger"
	"gorm.io/gorm"

	"github.com/sk-labs/logintel/app/pkg/e"
	orgRepo "github.com/sk-labs/logintel/app/repository/org"
	projectRepo "github.com/sk-labs/logintel/app/repository/project"
)

type (
	// Handler exposes project HTTP endpoints.
	Handler interface {
		i()
		ctx(c *gin.Context) context.Context
		Create() gin.HandlerFunc
		List() gin.HandlerFunc
	}

	handler struct {
		logger  *logger.Manager
		i18n    *i18n.Manager
		repo    projectRepo.Repo
		orgRepo orgRepo.Repo
	}
)

func (h handler) i() {}

func (h handler) ctx(c *gin.Context) context.Context {
	return c.Request.Context()
}

// New creates a project Handler.
func New(logger *logger.Manager, i18n *i18n.Manager, db *gorm.DB) Handler {
	return &handler{logger: logger, i18n: i18n, repo: projectRepo.NewRepo(db), orgRepo: orgRepo.NewRepo(db)}
}

// requireMembership verifies the authenticated caller belongs to orgID,
// writing a localized error response and returning false if not.
func (h handler) requireMembership(c *gin.Context, orgID uuid.UUID) bool {
	rawID, _ := c.Get("user_id")
	userID, err := uuid.Parse(rawID.(string))
	if err != nil {
		h.i18n.JSON(c, e.Unauthorized, nil, err)
		return false
	}

	ok, err := h.orgRepo.IsMember(orgID, userID)
	if err != nil {
		h.i18n.JSON(c, e.ERROR, nil, err)
		return false
	}
	if !ok {
		h.i18n.JSON(c, e.NotOrgMember, nil, nil)
		return false
	}

	return true
}
