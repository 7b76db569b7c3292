package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"brainstorm_web/internal/service"
)

// SessionHandler 處理與腦力激盪房間相關的請求
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler 創建一個新的 SessionHandler 實例
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// ListSessions 處理獲取房間列表的請求，最新的在前
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得房間列表"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// CreateSession 處理創建新房間的請求
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var input struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	session, err := h.sessionService.CreateSession(input.Title, userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "創建房間失敗"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession 處理獲取房間訊息的請求
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession 處理刪除房間的請求，只有創建者可以刪除
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, _ := c.Get("userID")

	err := h.sessionService.DeleteSession(c.Param("id"), userID.(string))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSessionCreator):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "刪除房間失敗"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "房間已刪除"})
}
