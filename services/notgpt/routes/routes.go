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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/notgpt/services/notgpt/handlers"
)

// SetupRoutes registers the full HTTP surface on router.
//
// staticDir holds the browser front end; when empty, the UI routes are
// skipped (API-only mode, used in tests).
func SetupRoutes(router *gin.Engine, chat *handlers.ChatHandler, staticDir string) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if staticDir != "" {
		router.StaticFS("/ui", http.Dir(staticDir))
		// Friendly redirect to the chat page
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/ui/index.html")
		})
	}

	router.POST("/chat", chat.HandleChat)
	router.POST("/chat/stream", chat.HandleChatStream)
	router.GET("/chat/ws", chat.HandleChatWS)
}
