package httpapi

import (
	"trade-journal/internal/application/auth"
	"trade-journal/internal/interface/http/handler"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/ping", s.handlePing)
	api.GET("/health", s.handleHealth)
	api.GET("/version", gin.WrapH(handler.Version(s.dataSource)))

	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.rateLimit(s.loginLimiter), s.handleLogin)
	authGroup.POST("/refresh", s.handleRefresh)
	authGroup.POST("/logout", s.handleLogout)
	authGroup.GET("/me", s.requireAuth(), s.handleMe)

	trades := api.Group("/trades", s.requireAuth(auth.PermJournalWrite))
	trades.GET("", s.handleListTrades)
	trades.POST("", s.handleCreateTrade)
	trades.GET("/:id", s.handleGetTrade)
	trades.PUT("/:id", s.handleUpdateTrade)
	trades.DELETE("/:id", s.handleDeleteTrade)

	analytics := api.Group("/analytics", s.requireAuth(auth.PermAnalyticsRead))
	analytics.GET("/overview", s.handleOverview)
	analytics.GET("/equity", s.handleEquity)
	analytics.GET("/dashboard", s.handleDashboard)
	analytics.GET("/dimensions/:dimension", s.handleDimension)
	analytics.GET("/export/:dimension", s.handleExportDimension)

	api.POST("/assistant/chat", s.rateLimit(s.chatLimiter), s.requireAuth(auth.PermAnalyticsRead), s.handleChat)
	api.POST("/calculator/compound", s.handleCompound)
}
