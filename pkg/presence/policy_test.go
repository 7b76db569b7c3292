package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"brainstorm_web/pkg/canvas"
)

func participantSeenAgo(d time.Duration, now time.Time) canvas.Participant {
	return canvas.Participant{UserID: "u1", LastSeen: now.Add(-d)}
}

func TestVisibleThreshold(t *testing.T) {
	now := time.Now()
	p := DefaultPolicy

	assert.True(t, p.Visible(participantSeenAgo(10*time.Second, now), now))
	assert.True(t, p.Visible(participantSeenAgo(30*time.Second, now), now))
	assert.False(t, p.Visible(participantSeenAgo(31*time.Second, now), now))
}

func TestActiveThreshold(t *testing.T) {
	now := time.Now()
	p := DefaultPolicy

	assert.True(t, p.Active(participantSeenAgo(2*time.Second, now), now))
	assert.False(t, p.Active(participantSeenAgo(6*time.Second, now), now))
}

func TestExpiredThreshold(t *testing.T) {
	now := time.Now()
	p := DefaultPolicy

	// 超過顯示門檻但還沒到移除門檻：隱藏但保留在工作集
	assert.False(t, p.Expired(participantSeenAgo(2*time.Minute, now), now))
	assert.True(t, p.Expired(participantSeenAgo(6*time.Minute, now), now))
}
