// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sk-labs/logintel/app/http/controller/project"
)

func projectGroup(api *gin.RouterGroup, core *Core) {
	projectHandler := project.New(core.Logger, core.I18n, core.MysqlDB["logintel"])

	api.Use(core.Middleware.CheckUserAuth())
	{
		api.POST("", projectHandler.Create())
		api.GET("", projectHandler.List())
	}
}
