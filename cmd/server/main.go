package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"homeplan/config"
	"homeplan/internal/handler"
	"homeplan/internal/httpserver"
	"homeplan/internal/plan"
	"homeplan/internal/repository"
	"homeplan/internal/service"
	"homeplan/pkg/db"
	"homeplan/pkg/logger"
	"homeplan/pkg/mq"
	"homeplan/pkg/outbox"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting homeplan API server...")

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx, dbConn, log); err != nil {
		log.Fatal("Schema migration failed", zap.Error(err))
	}
	migrateCancel()

	catalog, err := plan.LoadCatalog(cfg.Plans.File)
	if err != nil {
		log.Fatal("Failed to load plan templates", zap.String("file", cfg.Plans.File), zap.Error(err))
	}
	log.Info("Plan templates loaded", zap.Strings("plans", catalog.Names()))

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	projectRepo := repository.NewProjectRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)
	planWriter := repository.NewPlanWriter(dbConn, log)
	outboxRepo := outbox.NewRepository(dbConn)

	projectService := service.NewProjectService(projectRepo, taskRepo, milestoneRepo, planWriter, catalog, log)

	// Outbox dispatcher
	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, cfg.Outbox, log)
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		dispatcher.Start(dispatchCtx)
	}()

	projectHandler := handler.NewProjectHandler(projectService, publisher, log)
	adminHandler := handler.NewAdminHandler(outbox.NewReplayService(outboxRepo), log)
	router := httpserver.NewRouter(projectHandler, adminHandler, map[string]httpserver.ReadinessCheck{
		"db": dbConn.Ping,
		"mq": func(context.Context) error {
			if !publisher.IsConnected() {
				return errors.New("publisher disconnected")
			}
			return nil
		},
	}, cfg.JWT.Secret, log)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down homeplan API server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	stopDispatcher()
	<-dispatchDone

	log.Info("homeplan API server shutdown complete")
}
