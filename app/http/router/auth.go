// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sk-labs/logintel/app/http/controller/auth"
)

func authGroup(api *gin.RouterGroup, core *Core) {
	authHandler := auth.New(core.Logger, core.Redis["logintel"], core.I18n, core.MysqlDB["logintel"])
	{
		api.POST("register", authHandler.Register())
		api.POST("login", authHandler.Login())
		api.GET("me", core.Middleware.CheckUserAuth(), authHandler.Me())
	}
}
