package repository

import "brainstorm_web/internal/storage"

type Repositories struct {
	User        UserRepository
	Session     SessionRepository
	Idea        IdeaRepository
	Participant ParticipantRepository
	Message     MessageRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Session:     NewSessionRepository(db),
		Idea:        NewIdeaRepository(db),
		Participant: NewParticipantRepository(db),
		Message:     NewMessageRepository(db),
	}
}
