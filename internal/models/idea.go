package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Idea 表示畫布上的一張便利貼
// 任何參與者都可以修改或刪除，衝突採 last-write-wins
type Idea struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string    `gorm:"type:uuid;index;not null" json:"session_id"`
	Content   string    `gorm:"type:text" json:"content"`
	X         float64   `gorm:"not null" json:"x"` // 畫布座標，寫入前必須 clamp 為非負
	Y         float64   `gorm:"not null" json:"y"`
	Color     string    `gorm:"type:varchar(20)" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Idea) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
