package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buildtrack/config"
	"buildtrack/internal/handler"
	"buildtrack/internal/notify"
	"buildtrack/internal/outbox"
	"buildtrack/internal/repository"
	"buildtrack/internal/server"
	"buildtrack/internal/services"
	"buildtrack/internal/storage"
	"buildtrack/pkg/database"
	"buildtrack/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	projectRepo := repository.NewProjectRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	userRepo := repository.NewUserRepository(db)

	workflowSvc := services.NewWorkflowService(db, milestoneRepo, documentRepo, timelineRepo, outboxRepo)
	projectSvc := services.NewProjectService(db, projectRepo, milestoneRepo, documentRepo, timelineRepo)
	authSvc := services.NewAuthService(userRepo, cfg)
	auditSvc := services.NewAuditService(outboxRepo)

	var store storage.ObjectStore
	if cfg.S3.Bucket != "" {
		store, err = storage.NewClient(context.Background(), cfg.S3)
		if err != nil {
			l.Errorf("failed to create object store client: %v", err)
			os.Exit(1)
		}
	}

	redisClient := notify.NewClient(cfg.Redis)
	defer redisClient.Close()
	publisher := notify.NewRedisPublisher(redisClient)

	processor := outbox.NewProcessor(outboxRepo, cfg.Outbox, l)
	processor.Register("document_approved", services.NewAutoCompletionHandler(workflowSvc, milestoneRepo, documentRepo, userRepo, outboxRepo, l))
	notificationHandler := services.NewNotificationHandler(publisher)
	processor.Register("document_uploaded", notificationHandler)
	processor.Register("document_rejected", notificationHandler)
	processor.Register("milestone_status_changed", notificationHandler)
	processor.Register("milestone_auto_completed", notificationHandler)

	runner := outbox.NewRunner(processor)
	runner.Start(context.Background())

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Project:   handler.NewProjectHandler(projectSvc),
		Document:  handler.NewDocumentHandler(workflowSvc, store),
		Milestone: handler.NewMilestoneHandler(workflowSvc),
		Outbox:    handler.NewOutboxHandler(auditSvc),
	}, authSvc)

	go func() {
		if err := srv.Start(); err != nil {
			l.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Infof("shutting down")
	runner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Errorf("server shutdown: %v", err)
	}
}
