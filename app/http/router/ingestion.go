// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sk-labs/logintel/app/http/controller/ingestion"
)

func ingestionGroup(api *gin.RouterGroup, core *Core) {
	ingestionHandler := ingestion.New(core.Logger, core.I18n, core.MysqlDB["logintel"], core.Coordinator, core.Query, core.Insight, core.BlobStore)

	api.Use(core.Middleware.CheckUserAuth())
	{
		api.POST("logs/paste", rateLimit(core, "ingestions.submit"), ingestionHandler.Submit())
		api.POST("logs/upload", rateLimit(core, "ingestions.submit"), ingestionHandler.Upload())
		api.GET(":id", ingestionHandler.Get())
		api.GET(":id/overview", ingestionHandler.Overview())
		api.GET(":id/events", ingestionHandler.ListEvents())
		api.GET(":id/groups", ingestionHandler.Groups())
		api.GET(":id/groups/:fingerprint", ingestionHandler.GroupOverview())
		api.GET(":id/findings", ingestionHandler.Findings())
		api.GET(":id/findings/:finding_id", ingestionHandler.FindingDetail())
		api.POST(":id/insights", rateLimit(core, "ingestions.insights"), ingestionHandler.Insights())
		api.DELETE(":id", ingestionHandler.Delete())
	}
}
