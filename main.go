package main

import (
	"github.com/learnpet/learnpet/cache"
	"github.com/learnpet/learnpet/config"
	"github.com/learnpet/learnpet/database"
	"github.com/learnpet/learnpet/events"
	"github.com/learnpet/learnpet/handler"
	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/pkg/metrics"
	"github.com/learnpet/learnpet/repository"
	"github.com/learnpet/learnpet/router"
	"github.com/learnpet/learnpet/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func autoMigrate(db *gorm.DB, logger *logrus.Logger) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.ClassMember{},
		&models.LearningMaterial{},
		&models.Task{},
		&models.TaskSubmission{},
		&models.UserPoints{},
		&models.Pet{},
		&models.ObjectACLPolicy{},
	)
	if err != nil {
		logger.Fatalf("auto migrate failed: %v", err)
	}
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("load config failed: %v", err)
	}

	metrics.StartMetricsServer(cfg.Server.MetricsPort)

	db := database.InitDB(cfg)
	autoMigrate(db, logger)

	// repositories
	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	petRepo := repository.NewPetRepository(db)
	aclRepo := repository.NewACLRepository(db)

	// 可选组件：未配置时为 nil，调用方降级
	var leaderboard *cache.LeaderboardCache
	if cfg.Redis.Addr != "" {
		leaderboard, err = cache.NewLeaderboardCache(cfg.Redis, logger)
		if err != nil {
			logger.Fatalf("init leaderboard cache failed: %v", err)
		}
		defer leaderboard.Close()
	} else {
		logger.Warn("REDIS_ADDR 未配置，排行榜缓存已禁用")
	}

	// producer 保持 nil 接口值，service 层据此跳过发布
	var producer service.EventPublisher
	if cfg.Kafka.Brokers != "" {
		kafkaProducer := events.NewProducer(cfg.Kafka, logger)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	} else {
		logger.Warn("KAFKA_BROKERS 未配置，事件发布已禁用")
	}

	// services
	storageService, err := service.NewStorageService(cfg.MinIO, aclRepo, logger)
	if err != nil {
		logger.Fatalf("init storage service failed: %v", err)
	}
	aiClient := service.NewAIClient(cfg.OpenAI, logger)

	authService := service.NewAuthService(userRepo, cfg.JWT, logger)
	classService := service.NewClassService(classRepo, pointsRepo, leaderboard, logger)
	materialService := service.NewMaterialService(materialRepo, logger)
	taskService := service.NewTaskService(taskRepo, submissionRepo, classRepo, leaderboard, producer, logger)
	pointsService := service.NewPointsService(pointsRepo, classRepo)
	petService := service.NewPetService(petRepo, classRepo, userRepo, storageService, aiClient, producer, logger)

	r := router.Setup(cfg.JWT.Secret, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Class:    handler.NewClassHandler(classService),
		Material: handler.NewMaterialHandler(materialService),
		Task:     handler.NewTaskHandler(taskService),
		Points:   handler.NewPointsHandler(pointsService),
		Pet:      handler.NewPetHandler(petService, pointsService),
		Storage:  handler.NewStorageHandler(storageService),
	})

	logger.Infof("learnpet listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
