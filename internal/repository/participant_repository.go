package repository

import (
	"time"

	"gorm.io/gorm/clause"

	"brainstorm_web/internal/models"
	"brainstorm_web/internal/storage"
)

type ParticipantRepository interface {
	// Upsert 以 (session_id, user_id) 為衝突鍵寫入完整的在線記錄
	// 同一個用戶在同一個房間永遠只有一列
	Upsert(p *models.Participant) error
	FindBySession(sessionID string) ([]models.Participant, error)
	FindBySessionAndUser(sessionID, userID string) (*models.Participant, error)
	Delete(sessionID, userID string) error
	// DeleteStale 清除 last_seen 早於 cutoff 的記錄，回傳被清除的列
	// 作為客戶端離開時清理失敗的後備手段
	DeleteStale(cutoff time.Time) ([]models.Participant, error)
}

type participantRepository struct {
	db *storage.PostgresDB
}

func NewParticipantRepository(db *storage.PostgresDB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Upsert(p *models.Participant) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_name", "cursor_x", "cursor_y", "color", "last_seen", "hovering_idea_id",
		}),
	}).Create(p).Error
}

func (r *participantRepository) FindBySession(sessionID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.Where("session_id = ?", sessionID).Find(&participants).Error
	return participants, err
}

func (r *participantRepository) FindBySessionAndUser(sessionID, userID string) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepository) Delete(sessionID, userID string) error {
	return r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).
		Delete(&models.Participant{}).Error
}

func (r *participantRepository) DeleteStale(cutoff time.Time) ([]models.Participant, error) {
	var stale []models.Participant
	if err := r.db.Where("last_seen < ?", cutoff).Find(&stale).Error; err != nil {
		return nil, err
	}
	if len(stale) == 0 {
		return nil, nil
	}
	if err := r.db.Where("last_seen < ?", cutoff).Delete(&models.Participant{}).Error; err != nil {
		return nil, err
	}
	return stale, nil
}
