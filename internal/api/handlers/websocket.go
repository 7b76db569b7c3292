package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"brainstorm_web/internal/service"
	"brainstorm_web/pkg/canvas"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// FeedHandler 處理變更訂閱的 WebSocket 連接
type FeedHandler struct {
	feed           *service.FeedService
	sessionService *service.SessionService
}

// NewFeedHandler 創建一個新的 FeedHandler 實例
func NewFeedHandler(feed *service.FeedService, sessionService *service.SessionService) *FeedHandler {
	return &FeedHandler{feed: feed, sessionService: sessionService}
}

// HandleFeed 建立一個 (表, 房間) 主題的訂閱連接
// 每個實體類型對應一條獨立的連接，關閉連接即取消訂閱
func (h *FeedHandler) HandleFeed(c *gin.Context) {
	table := c.Query("table")
	switch table {
	case canvas.TableIdeas, canvas.TableParticipants, canvas.TableMessages:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的訂閱表名"})
		return
	}

	sessionID := c.Param("id")
	if _, err := h.sessionService.GetSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	// 升級 HTTP 連接為 WebSocket 連接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "升級WebSocket失敗"})
		return
	}

	// 阻塞直到客戶端斷開，清理由 FeedService 負責
	h.feed.HandleConnection(conn, sessionID, table)
}
