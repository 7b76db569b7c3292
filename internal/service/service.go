package service

import (
	"brainstorm_web/internal/repository"
)

type Services struct {
	User        *UserService
	Session     *SessionService
	Idea        *IdeaService
	Participant *ParticipantService
	Message     *MessageService
	Feed        *FeedService
}

func NewServices(repos *repository.Repositories) *Services {
	feed := NewFeedService()

	return &Services{
		User:        NewUserService(repos.User),
		Session:     NewSessionService(repos.Session),
		Idea:        NewIdeaService(repos.Idea, feed),
		Participant: NewParticipantService(repos.Participant, feed),
		Message:     NewMessageService(repos.Message, feed),
		Feed:        feed,
	}
}
