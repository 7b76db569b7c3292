// Package tasks 定義 asynq 背景任務的類型與資料結構。
package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// 任務類型常量
const (
	TypeParticipantSweep = "participant:sweep" // 過期在線記錄清掃任務
)

// ParticipantSweepPayload 定義在線記錄清掃任務的資料結構
type ParticipantSweepPayload struct {
	// 清除 last_seen 早於此時間差的記錄
	MaxAge time.Duration `json:"max_age"`
}

// NewParticipantSweepTask 創建一個新的在線記錄清掃任務
func NewParticipantSweepTask(maxAge time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(ParticipantSweepPayload{MaxAge: maxAge})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeParticipantSweep, payload), nil
}
