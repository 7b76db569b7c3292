package service

import (
	"errors"
	"math"
	"math/rand"

	"brainstorm_web/internal/models"
	"brainstorm_web/internal/repository"
	"brainstorm_web/pkg/canvas"
)

var ErrIdeaNotInSession = errors.New("便利貼不屬於這個房間")

// 便利貼的預設配色，創建時未指定顏色就隨機取一個
var ideaColors = []string{"#fbbf24", "#10b981", "#3b82f6", "#8b5cf6", "#ef4444", "#06b6d4"}

type IdeaService struct {
	ideaRepo repository.IdeaRepository
	feed     *FeedService
}

func NewIdeaService(ideaRepo repository.IdeaRepository, feed *FeedService) *IdeaService {
	return &IdeaService{ideaRepo: ideaRepo, feed: feed}
}

func (s *IdeaService) ListIdeas(sessionID string) ([]models.Idea, error) {
	return s.ideaRepo.FindBySession(sessionID)
}

// CreateIdea 在房間內新增一張便利貼，座標寫入前 clamp 為非負
func (s *IdeaService) CreateIdea(sessionID, content string, x, y float64, color string) (*models.Idea, error) {
	if color == "" {
		color = ideaColors[rand.Intn(len(ideaColors))]
	}

	idea := &models.Idea{
		SessionID: sessionID,
		Content:   content,
		X:         math.Max(0, x),
		Y:         math.Max(0, y),
		Color:     color,
	}
	if err := s.ideaRepo.Create(idea); err != nil {
		return nil, err
	}

	s.feed.Publish(sessionID, canvas.TableIdeas, canvas.EventInsert, nil, idea)
	return idea, nil
}

// UpdateIdea 更新便利貼的內容或位置，nil 欄位保持不變
// 沒有版本檢查，並發修改採 last-write-wins
func (s *IdeaService) UpdateIdea(sessionID, id string, content *string, x, y *float64) (*models.Idea, error) {
	idea, err := s.ideaRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if idea.SessionID != sessionID {
		return nil, ErrIdeaNotInSession
	}

	if content != nil {
		idea.Content = *content
	}
	if x != nil {
		idea.X = math.Max(0, *x)
	}
	if y != nil {
		idea.Y = math.Max(0, *y)
	}

	if err := s.ideaRepo.Update(idea); err != nil {
		return nil, err
	}

	s.feed.Publish(sessionID, canvas.TableIdeas, canvas.EventUpdate, nil, idea)
	return idea, nil
}

func (s *IdeaService) DeleteIdea(sessionID, id string) error {
	idea, err := s.ideaRepo.FindByID(id)
	if err != nil {
		return err
	}
	if idea.SessionID != sessionID {
		return ErrIdeaNotInSession
	}

	if err := s.ideaRepo.Delete(id); err != nil {
		return err
	}

	s.feed.Publish(sessionID, canvas.TableIdeas, canvas.EventDelete, idea, nil)
	return nil
}
