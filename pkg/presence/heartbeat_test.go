package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainstorm_web/pkg/canvas"
)

// fakePublisher 記錄所有的在線記錄寫入與刪除
type fakePublisher struct {
	mu      sync.Mutex
	upserts []canvas.Participant
	deletes []string
}

func (f *fakePublisher) UpsertParticipant(ctx context.Context, p canvas.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, p)
	return nil
}

func (f *fakePublisher) DeleteParticipant(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, sessionID)
	return nil
}

func (f *fakePublisher) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func (f *fakePublisher) lastUpsert() canvas.Participant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts[len(f.upserts)-1]
}

func TestJoinWritesOrigin(t *testing.T) {
	pub := &fakePublisher{}
	hb := NewHeartbeat(pub, "s1", "u1", "Alice", "#3b82f6")

	require.NoError(t, hb.Join(context.Background()))

	require.Equal(t, 1, pub.upsertCount())
	record := pub.lastUpsert()
	assert.Equal(t, "s1", record.SessionID)
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, "Alice", record.UserName)
	assert.Equal(t, 0.0, record.CursorX)
	assert.Equal(t, 0.0, record.CursorY)
	assert.False(t, record.LastSeen.IsZero())
}

// 視窗內的 N 次移動只會寫入一次，而且是最後的位置
func TestDebounceCoalescesMoves(t *testing.T) {
	pub := &fakePublisher{}
	hb := NewHeartbeat(pub, "s1", "u1", "Alice", "#3b82f6", WithInterval(30*time.Millisecond))
	defer hb.Stop()

	for i := 0; i < 10; i++ {
		hb.Move(float64(i), float64(i*2))
	}
	hb.Move(42, 24)

	time.Sleep(150 * time.Millisecond)

	require.Equal(t, 1, pub.upsertCount())
	record := pub.lastUpsert()
	assert.Equal(t, 42.0, record.CursorX)
	assert.Equal(t, 24.0, record.CursorY)
}

// 相隔超過視窗的兩次移動各寫入一次
func TestSeparateWindowsWriteSeparately(t *testing.T) {
	pub := &fakePublisher{}
	hb := NewHeartbeat(pub, "s1", "u1", "Alice", "#3b82f6", WithInterval(20*time.Millisecond))
	defer hb.Stop()

	hb.Move(1, 1)
	time.Sleep(80 * time.Millisecond)
	hb.Move(2, 2)
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 2, pub.upsertCount())
}

// 停留狀態搭上下一次位置寫入，不會單獨觸發寫入
func TestHoverRidesNextWrite(t *testing.T) {
	pub := &fakePublisher{}
	hb := NewHeartbeat(pub, "s1", "u1", "Alice", "#3b82f6", WithInterval(20*time.Millisecond))
	defer hb.Stop()

	ideaID := "i1"
	hb.Hover(&ideaID)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, pub.upsertCount())

	hb.Move(5, 5)
	time.Sleep(80 * time.Millisecond)

	require.Equal(t, 1, pub.upsertCount())
	record := pub.lastUpsert()
	require.NotNil(t, record.HoveringIdeaID)
	assert.Equal(t, "i1", *record.HoveringIdeaID)
}

// 離開後未觸發的寫入被取消，不會寫進已經離開的房間
func TestLeaveCancelsPendingWrite(t *testing.T) {
	pub := &fakePublisher{}
	hb := NewHeartbeat(pub, "s1", "u1", "Alice", "#3b82f6", WithInterval(30*time.Millisecond))

	hb.Move(9, 9)
	require.NoError(t, hb.Leave(context.Background()))

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, pub.upsertCount())
	assert.Equal(t, []string{"s1"}, pub.deletes)

	// 離開之後的移動也被忽略
	hb.Move(10, 10)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, pub.upsertCount())
}
