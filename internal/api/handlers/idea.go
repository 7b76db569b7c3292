package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"brainstorm_web/internal/service"
)

// IdeaHandler 處理與便利貼相關的請求
type IdeaHandler struct {
	ideaService *service.IdeaService
}

// NewIdeaHandler 創建一個新的 IdeaHandler 實例
func NewIdeaHandler(ideaService *service.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService}
}

// ListIdeas 回傳房間內所有便利貼，依建立時間由舊到新
func (h *IdeaHandler) ListIdeas(c *gin.Context) {
	ideas, err := h.ideaService.ListIdeas(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得便利貼"})
		return
	}

	c.JSON(http.StatusOK, ideas)
}

// CreateIdea 處理新增便利貼的請求
// 回傳包含伺服器分配的 id 與時間戳的完整記錄，供客戶端樂觀插入
func (h *IdeaHandler) CreateIdea(c *gin.Context) {
	var input struct {
		Content string  `json:"content"`
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		Color   string  `json:"color"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	idea, err := h.ideaService.CreateIdea(c.Param("id"), input.Content, input.X, input.Y, input.Color)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "新增便利貼失敗"})
		return
	}

	c.JSON(http.StatusCreated, idea)
}

// UpdateIdea 處理修改便利貼內容或位置的請求，缺少的欄位保持不變
func (h *IdeaHandler) UpdateIdea(c *gin.Context) {
	var input struct {
		Content *string  `json:"content"`
		X       *float64 `json:"x"`
		Y       *float64 `json:"y"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	idea, err := h.ideaService.UpdateIdea(c.Param("id"), c.Param("ideaID"), input.Content, input.X, input.Y)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, service.ErrIdeaNotInSession):
			c.JSON(http.StatusNotFound, gin.H{"error": "便利貼不存在"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新便利貼失敗"})
		}
		return
	}

	c.JSON(http.StatusOK, idea)
}

// DeleteIdea 處理刪除便利貼的請求
func (h *IdeaHandler) DeleteIdea(c *gin.Context) {
	err := h.ideaService.DeleteIdea(c.Param("id"), c.Param("ideaID"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, service.ErrIdeaNotInSession):
			c.JSON(http.StatusNotFound, gin.H{"error": "便利貼不存在"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "刪除便利貼失敗"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "便利貼已刪除"})
}
