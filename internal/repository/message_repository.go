package repository

import (
	"brainstorm_web/internal/models"
	"brainstorm_web/internal/storage"
)

type MessageRepository interface {
	Create(message *models.Message) error
	// FindBySession 依建立時間由舊到新回傳房間內所有訊息
	FindBySession(sessionID string) ([]models.Message, error)
}

type messageRepository struct {
	db *storage.PostgresDB
}

func NewMessageRepository(db *storage.PostgresDB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *messageRepository) FindBySession(sessionID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&messages).Error
	return messages, err
}
