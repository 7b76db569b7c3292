package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant 是一筆在線狀態記錄，不是持久的成員資格
// 同一個 (session_id, user_id) 只會有一列，由 upsert 保證
// 消費端根據 last_seen 判斷是否過期（見 pkg/presence）
type Participant struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_session_user" json:"session_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:idx_session_user" json:"user_id"`
	UserName       string    `gorm:"not null" json:"user_name"`
	CursorX        float64   `json:"cursor_x"`
	CursorY        float64   `json:"cursor_y"`
	Color          string    `gorm:"type:varchar(20)" json:"color"`
	LastSeen       time.Time `gorm:"index" json:"last_seen"`
	HoveringIdeaID *string   `gorm:"type:uuid" json:"hovering_idea_id,omitempty"` // 游標目前停留的便利貼
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
