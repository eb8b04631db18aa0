// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package auth provides HTTP handlers for user registration, login, and
// session introspection.
package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sk-pkg/i18n"
	"github.com/sk-pkg/logger"
	"github.com/sk-pkg/redis"
	"gorm.io/gorm"

	"github.com/sk-labs/logintel/app/repository/auth"
)

type (
	// Handler defines HTTP handlers for user auth endpoints.
	Handler interface {
		// i is an unexported marker method used to seal this interface.
		i()
		// ctx builds a request-scoped context with trace metadata.
		ctx(c *gin.Context) context.Context
		// Register handles new user + default organization creation.
		Register() gin.HandlerFunc
		// Login handles user credential verification and token issuance.
		Login() gin.HandlerFunc
		// Me returns the authenticated user's profile.
		Me() gin.HandlerFunc
	}

	// handler is the concrete implementation of Handler.
	handler struct {
		logger *logger.Manager
		redis  *redis.Manager
		i18n   *i18n.Manager
		repo   auth.Repo
	}
)

// ctx builds a context carrying the trace ID from Gin context.
func (h handler) ctx(c *gin.Context) context.Context {
	traceID, _ := c.Get("trace_id")

	return context.WithValue(context.Background(), logger.TraceIDKey, traceID.(string))
}

// i is a marker method that prevents external implementations.
func (h handler) i() {}

// New creates an auth handler with repository and infrastructure dependencies.
func New(logger *logger.Manager, redis *redis.Manager, i18n *i18n.Manager, db *gorm.DB) Handler {
	return &handler{
		logger: logger,
		redis:  redis,
		i18n:   i18n,
		repo:   auth.NewRepo(db, redis),
	}
}
