package repository

import (
	"brainstorm_web/internal/models"
	"brainstorm_web/internal/storage"
)

type IdeaRepository interface {
	Create(idea *models.Idea) error
	FindByID(id string) (*models.Idea, error)
	// FindBySession 依建立時間由舊到新回傳房間內所有便利貼
	FindBySession(sessionID string) ([]models.Idea, error)
	Update(idea *models.Idea) error
	Delete(id string) error
}

type ideaRepository struct {
	db *storage.PostgresDB
}

func NewIdeaRepository(db *storage.PostgresDB) IdeaRepository {
	return &ideaRepository{db: db}
}

func (r *ideaRepository) Create(idea *models.Idea) error {
	return r.db.Create(idea).Error
}

func (r *ideaRepository) FindByID(id string) (*models.Idea, error) {
	var idea models.Idea
	err := r.db.Where("id = ?", id).First(&idea).Error
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

func (r *ideaRepository) FindBySession(sessionID string) ([]models.Idea, error) {
	var ideas []models.Idea
	err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&ideas).Error
	return ideas, err
}

func (r *ideaRepository) Update(idea *models.Idea) error {
	return r.db.Save(idea).Error
}

func (r *ideaRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Idea{}).Error
}
