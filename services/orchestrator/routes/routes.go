// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/campus-compass/services/orchestrator/audit"
	"github.com/AleutianAI/campus-compass/services/orchestrator/handlers"
	"github.com/AleutianAI/campus-compass/services/orchestrator/middleware"
	"github.com/AleutianAI/campus-compass/services/orchestrator/pipeline"
)

// Deps carries the wired components the routes need.
type Deps struct {
	Pipeline *pipeline.Pipeline

	// Alerts may be nil when no store is configured.
	Alerts audit.AlertStore

	// ChatLimiter rate limits the chat route. May be nil.
	ChatLimiter *middleware.RateLimiter

	// AdminToken protects the admin group. Empty disables auth.
	AdminToken string

	// BackendConfigured is surfaced through /health.
	BackendConfigured bool
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.Health(deps.BackendConfigured))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	wellbeing := router.Group("/wellbeing")
	if deps.ChatLimiter != nil {
		wellbeing.Use(deps.ChatLimiter.Middleware())
	}
	wellbeing.POST("/chat", handlers.WellbeingChat(deps.Pipeline))

	router.GET("/alerts", handlers.ListAlerts(deps.Alerts))

	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(deps.AdminToken))
	{
		admin.POST("/alerts", handlers.CreateAlert(deps.Alerts))
	}
}
