package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session 表示一個腦力激盪房間
// 除了標題以外不可變；只有創建者可以刪除，刪除時會連帶清除
// 房間內的便利貼、參與者與聊天訊息
type Session struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedBy string    `gorm:"type:uuid;index;not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
