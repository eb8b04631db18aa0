// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package org implements the organization HTTP endpoint for creating an
// organization.
package org

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sk-pkg/i18n"
	"github.com/sk-pkg/logger"
	"gorm.io/gorm"

	orgRepo "github.com/sk-labs/logintel/app/repository/org"
)

type (
	// Handler exposes organization HTTP endpoints.
	Handler interface {
		i()
		ctx(c *gin.Context) context.Context
		Create() gin.HandlerFunc
	}

	handler struct {
		logger *logger.Manager
		i18n   *i18n.Manager
		repo   orgRepo.Repo
	}
)

func (h handler) i() {}

func (h handler) ctx(c *gin.Context) context.Context {
	return c.Request.Context()
}

// New creates an org Handler.
func New(logger *logger.Manager, i18n *i18n.Manager, db *gorm.DB) Handler {
	return &handler{logger: logger, i18n: i18n, repo: orgRepo.NewRepo(db)}
}
