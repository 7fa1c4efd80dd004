package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"homeplan/config"
	"homeplan/internal/mqhandler"
	"homeplan/internal/plan"
	"homeplan/internal/repository"
	"homeplan/internal/service"
	"homeplan/pkg/db"
	"homeplan/pkg/logger"
	"homeplan/pkg/mq"
	redisclient "homeplan/pkg/redis"
	"homeplan/pkg/util"
)

const planRequestedQueue = "project.plan_requested.q"

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting homeplan worker...")

	rdb, err := redisclient.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	catalog, err := plan.LoadCatalog(cfg.Plans.File)
	if err != nil {
		log.Fatal("Failed to load plan templates", zap.String("file", cfg.Plans.File), zap.Error(err))
	}

	projectService := service.NewProjectService(
		repository.NewProjectRepository(dbConn, log),
		repository.NewTaskRepository(dbConn, log),
		repository.NewMilestoneRepository(dbConn, log),
		repository.NewPlanWriter(dbConn, log),
		catalog,
		log,
	)

	planHandler := mqhandler.NewPlanRequestedHandler(
		projectService,
		util.NewDeduper(rdb, cfg.DedupTTL, log),
		util.NewRetryCounter(rdb, cfg.DedupTTL),
		log,
	)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, planRequestedQueue, mq.RoutingPlanRequested, log)
	if err != nil {
		log.Fatal("Failed to init plan request consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(planHandler.Handle)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("Starting project.plan_requested consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Plan request consumer failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down homeplan worker gracefully...")
	consumer.Stop()
	<-done
	log.Info("homeplan worker shutdown complete")
}
