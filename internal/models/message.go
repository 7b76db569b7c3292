package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message 表示房間內的一則聊天訊息，只會新增不會修改
type Message struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string    `gorm:"type:uuid;index;not null" json:"session_id"`
	UserID    string    `gorm:"type:uuid;not null" json:"user_id"`
	UserName  string    `gorm:"not null" json:"user_name"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Color     string    `gorm:"type:varchar(20)" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
