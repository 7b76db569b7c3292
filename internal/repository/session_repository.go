package repository

import (
	"brainstorm_web/internal/models"
	"brainstorm_web/internal/storage"

	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(session *models.Session) error
	FindByID(id string) (*models.Session, error)
	FindAll() ([]models.Session, error)
	// DeleteCascade 刪除房間並連帶清除其中的便利貼、參與者與訊息
	DeleteCascade(id string) error
}

type sessionRepository struct {
	db *storage.PostgresDB
}

func NewSessionRepository(db *storage.PostgresDB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByID(id string) (*models.Session, error) {
	var session models.Session
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindAll 查詢所有房間，最新的在前
func (r *sessionRepository) FindAll() ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) DeleteCascade(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.Idea{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Session{}).Error
	})
}
