package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"brainstorm_web/internal/service"
	"brainstorm_web/internal/tasks"
)

// ParticipantSweepHandler 處理過期在線記錄的清掃任務
type ParticipantSweepHandler struct {
	participantService *service.ParticipantService
}

func NewParticipantSweepHandler(participantService *service.ParticipantService) *ParticipantSweepHandler {
	return &ParticipantSweepHandler{participantService: participantService}
}

// ProcessTask 清除超過保留時間的在線記錄並廣播刪除事件
func (h *ParticipantSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ParticipantSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal sweep payload: %v: %w", err, asynq.SkipRetry)
	}

	cutoff := time.Now().Add(-payload.MaxAge)
	removed, err := h.participantService.SweepStale(cutoff)
	if err != nil {
		return fmt.Errorf("failed to sweep stale participants: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"component": "participant_sweep",
		"removed":   removed,
	}).Debug("Sweep completed")
	return nil
}
