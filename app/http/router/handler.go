// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package router wires HTTP route groups and registers controller handlers.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sk-pkg/i18n"
	"github.com/sk-pkg/logger"
	"github.com/sk-pkg/redis"
	"gorm.io/gorm"

	"github.com/sk-labs/logintel/app/http/middleware"
	ingestionSvc "github.com/sk-labs/logintel/app/service/ingestion"
	"github.com/sk-labs/logintel/internal/blobstore"
	"github.com/sk-labs/logintel/internal/insight"
)

// Core carries every dependency controllers need, built once in bootstrap
// and threaded through route registration.
type Core struct {
	Logger      *logger.Manager
	Redis       map[string]*redis.Manager
	I18n        *i18n.Manager
	MysqlDB     map[string]*gorm.DB
	Middleware  middleware.Middleware
	Coordinator ingestionSvc.Coordinator
	Query       ingestionSvc.Query
	Insight     *insight.Client
	BlobStore   blobstore.Store
	RateLimits  map[string]string
}

// New registers every API route group under /api/v1.
//
// Parameters:
//   - mux: gin engine that receives route registrations.
//   - core: shared dependency container for handlers.
//
// Returns:
//   - *gin.Engine: the same engine after route registration.
//
// Example:
//
//	router.New(mux, core)
func New(mux *gin.Engine, core *Core) *gin.Engine {
	api := mux.Group("api/v1")

	api.GET("ping", func(c *gin.Context) {
		core.I18n.JSON(c, 0, nil, nil)
	})

	authGroup(api.Group("auth"), core)
	orgGroup(api.Group("orgs"), core)
	projectGroup(api.Group("orgs/:org_id/projects"), core)
	ingestionGroup(api.Group("orgs/:org_id/projects/:project_id/ingestions"), core)

	return mux
}

// rateLimit returns the rate-limit middleware for route if a spec is
// configured for it, a no-op middleware otherwise.
func rateLimit(core *Core, route string) gin.HandlerFunc {
	spec, ok := core.RateLimits[route]
	if !ok || spec == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return middleware.RateLimit(core.Redis["logintel"], core.I18n, route, spec)
}
