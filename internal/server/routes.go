package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limited := newRateLimiter(s.config.RatePerSecond, s.config.RateBurst)

	// Session API
	s.echo.POST("/api/sessions", s.handleCreateSession, limited)
	s.echo.GET("/api/sessions", s.handleListSessions)
	s.echo.GET("/api/sessions/:code", s.handleGetSession)
	s.echo.DELETE("/api/sessions/:code", s.handleDeleteSession, limited)
	s.echo.POST("/api/sessions/:code/join", s.handleJoinSession, limited)
	s.echo.POST("/api/sessions/:code/vote", s.handleSubmitVote, limited)
	s.echo.POST("/api/sessions/:code/actions", s.handleSessionAction, limited)
}
