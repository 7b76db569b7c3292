package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"brainstorm_web/internal/models"
	"brainstorm_web/internal/repository"
	"brainstorm_web/pkg/canvas"
)

// MaxMessageLength 是單則聊天訊息的長度上限（rune 數）
const MaxMessageLength = 500

var (
	ErrMessageEmpty   = errors.New("訊息不能為空")
	ErrMessageTooLong = errors.New("訊息長度超過上限")
)

type MessageService struct {
	messageRepo repository.MessageRepository
	feed        *FeedService
}

func NewMessageService(messageRepo repository.MessageRepository, feed *FeedService) *MessageService {
	return &MessageService{messageRepo: messageRepo, feed: feed}
}

func (s *MessageService) ListMessages(sessionID string) ([]models.Message, error) {
	return s.messageRepo.FindBySession(sessionID)
}

// SendMessage 新增一則聊天訊息，訊息只會新增不會修改或刪除
func (s *MessageService) SendMessage(sessionID, userID, userName, color, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	message := &models.Message{
		SessionID: sessionID,
		UserID:    userID,
		UserName:  userName,
		Message:   text,
		Color:     color,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	s.feed.Publish(sessionID, canvas.TableMessages, canvas.EventInsert, nil, message)
	return message, nil
}
