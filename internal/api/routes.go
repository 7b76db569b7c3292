package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"brainstorm_web/internal/api/handlers"
	"brainstorm_web/internal/middleware"
	"brainstorm_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services, redisClient *redis.Client) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	sessionHandler := handlers.NewSessionHandler(services.Session)
	ideaHandler := handlers.NewIdeaHandler(services.Idea)
	messageHandler := handlers.NewMessageHandler(services.Message)
	participantHandler := handlers.NewParticipantHandler(services.Participant)
	feedHandler := handlers.NewFeedHandler(services.Feed, services.Session)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.GET("/me", authHandler.Me)

		// 腦力激盪房間相關
		sessions := authorized.Group("/sessions")
		{
			// 房間基本操作
			sessions.GET("", sessionHandler.ListSessions)          // 獲取房間列表
			sessions.POST("", sessionHandler.CreateSession)        // 創建房間
			sessions.GET("/:id", sessionHandler.GetSession)        // 獲取房間信息
			sessions.DELETE("/:id", sessionHandler.DeleteSession)  // 刪除房間（僅創建者）

			// 便利貼
			sessions.GET("/:id/ideas", ideaHandler.ListIdeas)
			sessions.POST("/:id/ideas", ideaHandler.CreateIdea)
			sessions.PATCH("/:id/ideas/:ideaID", ideaHandler.UpdateIdea)
			sessions.DELETE("/:id/ideas/:ideaID", ideaHandler.DeleteIdea)

			// 聊天訊息，發送有速率限制
			sessions.GET("/:id/messages", messageHandler.ListMessages)
			sessions.POST("/:id/messages",
				middleware.RateLimit(redisClient, 5), messageHandler.SendMessage)

			// 在線狀態
			sessions.GET("/:id/participants", participantHandler.ListParticipants)
			sessions.PUT("/:id/participants", participantHandler.UpsertParticipant)
			sessions.DELETE("/:id/participants", participantHandler.LeaveSession)

			// 變更訂閱（WebSocket），每個實體類型一條連接
			sessions.GET("/:id/feed", feedHandler.HandleFeed)
		}
	}
}
