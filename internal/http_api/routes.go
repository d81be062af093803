package http_api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.POST("/api/v1/subscriptions", s.subscribe)
	s.router.DELETE("/api/v1/subscriptions", s.unsubscribe)
	s.router.GET("/api/v1/subscriptions/status", s.subscriptionStatus)
	s.router.POST("/api/v1/tips", s.tip)

	s.router.GET("/api/v1/stats", s.platformStats)
	s.router.GET("/api/v1/accounts/:name/stats", s.accountStats)
	s.router.GET("/api/v1/posts/:id/tips", s.postTips)

	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
