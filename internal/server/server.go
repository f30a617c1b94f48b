package server

import (
	"context"
	"fmt"
	"net/http"

	"buildtrack/config"
	"buildtrack/internal/handler"
	"buildtrack/internal/middleware"
	"buildtrack/internal/services"
	"buildtrack/internal/transport/httpdto"
	"buildtrack/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

type Handlers struct {
	Auth      *handler.AuthHandler
	Project   *handler.ProjectHandler
	Document  *handler.DocumentHandler
	Milestone *handler.MilestoneHandler
	Outbox    *handler.OutboxHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.Server.Environment == logger.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.POST("/v1/auth/login", handlers.Auth.Login)

	authed := s.engine.Group("/v1", middleware.AuthMiddleware(authService))
	{
		authed.POST("/projects", handlers.Project.Create)
		authed.GET("/projects", handlers.Project.List)
		authed.GET("/projects/:id", handlers.Project.Detail)
		authed.GET("/projects/:id/timeline", handlers.Project.Timeline)
		authed.POST("/projects/:id/milestones", handlers.Project.AddMilestone)

		authed.POST("/document-types", handlers.Project.CreateDocumentType)

		authed.PATCH("/milestones/:id/status", handlers.Milestone.ChangeStatus)
		authed.PATCH("/milestones/:id/flags", handlers.Milestone.SetFlags)
		authed.PATCH("/checklist-items/:id", handlers.Milestone.SetChecklistItemDone)

		authed.POST("/requirements/:id/documents", handlers.Document.Upload)
		authed.POST("/documents/:id/review", handlers.Document.Review)

		authed.GET("/outbox/events", handlers.Outbox.List)
	}
}

func (s *Server) Start() error {
	s.logger.Infof("starting server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
