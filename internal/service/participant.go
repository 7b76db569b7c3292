package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"brainstorm_web/internal/models"
	"brainstorm_web/internal/repository"
	"brainstorm_web/pkg/canvas"
)

type ParticipantService struct {
	participantRepo repository.ParticipantRepository
	feed            *FeedService
}

func NewParticipantService(participantRepo repository.ParticipantRepository, feed *FeedService) *ParticipantService {
	return &ParticipantService{participantRepo: participantRepo, feed: feed}
}

func (s *ParticipantService) ListParticipants(sessionID string) ([]models.Participant, error) {
	return s.participantRepo.FindBySession(sessionID)
}

// UpsertParticipant 寫入完整的在線記錄並更新 last_seen
// 第一次寫入廣播 insert，之後廣播 update；客戶端對兩者的處理相同
func (s *ParticipantService) UpsertParticipant(p *models.Participant) (*models.Participant, error) {
	_, err := s.participantRepo.FindBySessionAndUser(p.SessionID, p.UserID)
	existed := err == nil

	p.LastSeen = time.Now()
	if err := s.participantRepo.Upsert(p); err != nil {
		return nil, err
	}

	// upsert 撞到既有列時保留原本的主鍵，重讀一次取得實際儲存的列
	stored, err := s.participantRepo.FindBySessionAndUser(p.SessionID, p.UserID)
	if err != nil {
		return nil, err
	}

	kind := canvas.EventInsert
	if existed {
		kind = canvas.EventUpdate
	}
	s.feed.Publish(p.SessionID, canvas.TableParticipants, kind, nil, stored)
	return stored, nil
}

// LeaveSession 刪除用戶的在線記錄並廣播，讓其他客戶端移除游標
func (s *ParticipantService) LeaveSession(sessionID, userID string) error {
	participant, err := s.participantRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		// 記錄已經不存在就視為已離開
		return nil
	}

	if err := s.participantRepo.Delete(sessionID, userID); err != nil {
		return err
	}

	s.feed.Publish(sessionID, canvas.TableParticipants, canvas.EventDelete, participant, nil)
	return nil
}

// SweepStale 清除 last_seen 早於 cutoff 的在線記錄並逐筆廣播刪除事件
// 客戶端離開時的清理只是盡力而為，這裡是伺服器端的後備清掃
func (s *ParticipantService) SweepStale(cutoff time.Time) (int, error) {
	stale, err := s.participantRepo.DeleteStale(cutoff)
	if err != nil {
		return 0, err
	}

	for i := range stale {
		p := stale[i]
		s.feed.Publish(p.SessionID, canvas.TableParticipants, canvas.EventDelete, &p, nil)
	}

	if len(stale) > 0 {
		logrus.WithField("count", len(stale)).Info("Swept stale participants")
	}
	return len(stale), nil
}
