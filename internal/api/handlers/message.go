package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"brainstorm_web/internal/service"
)

// MessageHandler 處理與聊天訊息相關的請求
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 創建一個新的 MessageHandler 實例
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// ListMessages 回傳房間內所有訊息，依建立時間由舊到新
func (h *MessageHandler) ListMessages(c *gin.Context) {
	messages, err := h.messageService.ListMessages(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得訊息"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage 處理發送訊息的請求
// 回傳包含伺服器分配的 id 與時間戳的完整記錄，供客戶端樂觀插入
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var input struct {
		Message string `json:"message" binding:"required"`
		Color   string `json:"color"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	userName, _ := c.Get("userName")

	message, err := h.messageService.SendMessage(
		c.Param("id"), userID.(string), userName.(string), input.Color, input.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageEmpty), errors.Is(err, service.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "發送訊息失敗"})
		}
		return
	}

	c.JSON(http.StatusCreated, message)
}
