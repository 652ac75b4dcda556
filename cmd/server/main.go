package main

import (
	"context"
	"errors"
	"gamification_hub/internal/api"
	"gamification_hub/internal/app/badge"
	"gamification_hub/internal/app/service"
	"gamification_hub/internal/app/worker"
	"gamification_hub/internal/common/security"
	"gamification_hub/internal/domain/repository"
	"gamification_hub/internal/platform/config"
	"gamification_hub/internal/platform/database"
	"gamification_hub/internal/platform/logger"
	"gamification_hub/internal/platform/queue"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 1. Configuration and logging
	config.Load()
	cfg := config.AppConfig
	httpLogger := logger.New("gamification-hub", cfg.AppEnv, cfg.LogLevel, cfg.LogJSON)
	log := httpLogger.Logger

	// 2. JWT
	security.InitJWT()

	// 3. Database
	database.Connect()
	defer database.Close()
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, database.DB)
		cancel()
		if err != nil {
			log.Error("Schema migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("Database schema applied")
	}

	// 4. Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	solutionRepo := repository.NewPgSolutionRepository(database.DB)
	notificationRepo := repository.NewPgNotificationRepository(database.DB)

	// 5. Redis backs the cross-instance badge lock and the rescan queue.
	var locker badge.Locker = badge.NewKeyedMutex()
	var rescanQueue *queue.RedisQueue
	if cfg.RedisEnabled {
		queue.ConnectRedis()
		defer queue.CloseRedis()
		locker = queue.NewRedisLocker(queue.RDB, cfg.BadgeLockPrefix, cfg.BadgeLockTTL, cfg.BadgeLockWait)
		rescanQueue = queue.NewRedisQueue(queue.RDB, cfg.BadgeRescanQueueName)
	} else {
		log.Warn("Redis disabled: badge evaluation locks are in-process and rescans are unavailable")
	}

	// 6. Badge evaluator and services
	evaluator := badge.NewEvaluator(userRepo, solutionRepo, challengeRepo, notificationRepo, locker)

	var adminRescan service.RescanQueue
	if rescanQueue != nil {
		adminRescan = rescanQueue
	}
	services := api.Services{
		Auth:          service.NewAuthService(userRepo),
		Challenges:    service.NewChallengeService(challengeRepo, solutionRepo, userRepo, notificationRepo),
		Solutions:     service.NewSolutionService(solutionRepo, challengeRepo, notificationRepo, evaluator),
		Notifications: service.NewNotificationService(notificationRepo),
		Leaderboard:   service.NewLeaderboardService(userRepo, cfg.LeaderboardLimit),
		Admin:         service.NewAdminService(userRepo, challengeRepo, solutionRepo, notificationRepo, evaluator, adminRescan),
	}

	// 7. Rescan worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workerDone := make(chan struct{})
	if rescanQueue != nil {
		rescanWorker := worker.NewBadgeRescanWorker(rescanQueue, evaluator, log)
		go func() {
			rescanWorker.Start(logger.WithLogger(workerCtx, log))
			close(workerDone)
		}()
	} else {
		close(workerDone)
	}

	// 8. HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      api.NewRouter(services, httpLogger, cfg.CORSAllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("Server starting", "port", cfg.APIPort, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Could not listen", "port", cfg.APIPort, "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	// 9. Graceful shutdown
	log.Info("Shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn("Rescan worker did not stop in time")
	}
	log.Info("Server and worker stopped")
}
