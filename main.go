package main

import (
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"brainstorm_web/internal/api"
	"brainstorm_web/internal/models"
	"brainstorm_web/internal/repository"
	"brainstorm_web/internal/service"
	"brainstorm_web/internal/storage"
	"brainstorm_web/internal/utils"
	"brainstorm_web/internal/worker"
	"brainstorm_web/pkg/config"
)

func main() {
	logger := logrus.New()

	// 載入應用程式配置
	// 從配置文件中讀取設置，如數據庫連接信息和服務器地址等
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	utils.SetJWTSecret(cfg.JWT.Secret)

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(storage.PostgresConfig{
		Host:     cfg.DB.Host,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Name:     cfg.DB.Name,
		Port:     cfg.DB.Port,
		SSLMode:  cfg.DB.SSLMode,
		TimeZone: cfg.DB.TimeZone,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 根據定義的模型自動創建或更新數據庫表結構
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Idea{},
		&models.Participant{},
		&models.Message{},
	); err != nil {
		logger.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 Redis 連接，用於速率限制與背景任務佇列
	redisClient, err := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("Failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	// 初始化 repositories 和 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos)

	// 啟動背景清掃 worker，清除過期的在線記錄
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	workerServer := worker.NewWorkerServer(redisOpt, services.Participant, logger)
	go workerServer.Start()
	defer workerServer.Shutdown()

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services, redisClient)

	// 啟動伺服器
	// 使用配置中指定的地址啟動 HTTP 服務器
	if err := r.Run(cfg.Server.Address); err != nil {
		logger.Fatalf("Failed to run server: %v", err)
	}
}
