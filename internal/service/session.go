package service

import (
	"errors"
	"fmt"
	"time"

	"brainstorm_web/internal/models"
	"brainstorm_web/internal/repository"
)

var ErrNotSessionCreator = errors.New("只有創建者可以刪除房間")

type SessionService struct {
	sessionRepo repository.SessionRepository
}

func NewSessionService(sessionRepo repository.SessionRepository) *SessionService {
	return &SessionService{sessionRepo: sessionRepo}
}

func (s *SessionService) CreateSession(title, createdBy string) (*models.Session, error) {
	if title == "" {
		title = fmt.Sprintf("Brainstorming Session - %s", time.Now().Format("2006/01/02"))
	}

	session := &models.Session{
		Title:     title,
		CreatedBy: createdBy,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) GetSession(id string) (*models.Session, error) {
	return s.sessionRepo.FindByID(id)
}

func (s *SessionService) ListSessions() ([]models.Session, error) {
	return s.sessionRepo.FindAll()
}

// DeleteSession 刪除房間並連帶清除房間內所有資料，只有創建者可以執行
func (s *SessionService) DeleteSession(id, userID string) error {
	session, err := s.sessionRepo.FindByID(id)
	if err != nil {
		return err
	}
	if session.CreatedBy != userID {
		return ErrNotSessionCreator
	}
	return s.sessionRepo.DeleteCascade(id)
}
