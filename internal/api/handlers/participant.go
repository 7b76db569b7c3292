package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brainstorm_web/internal/models"
	"brainstorm_web/internal/service"
)

// ParticipantHandler 處理與在線狀態相關的請求
type ParticipantHandler struct {
	participantService *service.ParticipantService
}

// NewParticipantHandler 創建一個新的 ParticipantHandler 實例
func NewParticipantHandler(participantService *service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: participantService}
}

// ListParticipants 回傳房間內所有在線記錄，過期判斷由客戶端負責
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	participants, err := h.participantService.ListParticipants(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得參與者"})
		return
	}

	c.JSON(http.StatusOK, participants)
}

// UpsertParticipant 寫入自己的完整在線記錄（游標位置、顏色、停留的便利貼）
// 以 (session_id, user_id) 為衝突鍵，last_seen 由伺服器設定
func (h *ParticipantHandler) UpsertParticipant(c *gin.Context) {
	var input struct {
		CursorX        float64 `json:"cursor_x"`
		CursorY        float64 `json:"cursor_y"`
		Color          string  `json:"color"`
		HoveringIdeaID *string `json:"hovering_idea_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	userName, _ := c.Get("userName")

	participant := &models.Participant{
		SessionID:      c.Param("id"),
		UserID:         userID.(string),
		UserName:       userName.(string),
		CursorX:        input.CursorX,
		CursorY:        input.CursorY,
		Color:          input.Color,
		HoveringIdeaID: input.HoveringIdeaID,
	}

	stored, err := h.participantService.UpsertParticipant(participant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新在線狀態失敗"})
		return
	}

	c.JSON(http.StatusOK, stored)
}

// LeaveSession 刪除自己的在線記錄，離開房間時呼叫
func (h *ParticipantHandler) LeaveSession(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := h.participantService.LeaveSession(c.Param("id"), userID.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "離開房間失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已離開房間"})
}
