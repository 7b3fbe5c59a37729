package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kevinlin/planning-poker/internal/config"
	"github.com/kevinlin/planning-poker/internal/domain"
	apperrors "github.com/kevinlin/planning-poker/internal/errors"
	"github.com/kevinlin/planning-poker/internal/poker"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	engine    *poker.Engine
	store     domain.SessionStore
	startTime time.Time
}

func NewServer(cfg *config.Config, engine *poker.Engine, store domain.SessionStore) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		engine:    engine,
		store:     store,
		startTime: time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
