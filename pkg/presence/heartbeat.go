package presence

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"brainstorm_web/pkg/canvas"
)

// DebounceInterval 是游標寫入的合併視窗
// 視窗內的多次移動只會寫入最後一個位置（trailing debounce）
const DebounceInterval = 50 * time.Millisecond

// Publisher 是心跳寫入在線記錄的目的地
type Publisher interface {
	UpsertParticipant(ctx context.Context, p canvas.Participant) error
	DeleteParticipant(ctx context.Context, sessionID string) error
}

// Heartbeat 以去抖動的方式發布本地用戶的游標位置與活動時間
// 每次寫入都重送完整的參與者記錄，不做部分更新
type Heartbeat struct {
	publisher Publisher
	sessionID string
	userID    string
	userName  string
	color     string

	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	timer  *time.Timer
	x, y   float64
	hover  *string
	closed bool
}

// Option 調整心跳行為，主要供測試使用
type Option func(*Heartbeat)

// WithInterval 覆寫去抖動視窗
func WithInterval(d time.Duration) Option {
	return func(h *Heartbeat) { h.interval = d }
}

// WithClock 覆寫取得目前時間的方式
func WithClock(now func() time.Time) Option {
	return func(h *Heartbeat) { h.now = now }
}

func NewHeartbeat(publisher Publisher, sessionID, userID, userName, color string, opts ...Option) *Heartbeat {
	h := &Heartbeat{
		publisher: publisher,
		sessionID: sessionID,
		userID:    userID,
		userName:  userName,
		color:     color,
		interval:  DebounceInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Join 在進入房間時立刻寫入一筆游標在原點的在線記錄
func (h *Heartbeat) Join(ctx context.Context) error {
	h.mu.Lock()
	record := h.record(0, 0, nil)
	h.mu.Unlock()
	return h.publisher.UpsertParticipant(ctx, record)
}

// Move 記錄一次游標移動並重設去抖動計時器
// 視窗結束時只有最後的位置會被寫入
func (h *Heartbeat) Move(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.x, h.y = x, y
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.interval, h.flush)
}

// Hover 記錄游標目前停留的便利貼，nil 表示沒有停留
// 不另外寫入，搭上下一次位置寫入
func (h *Heartbeat) Hover(ideaID *string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hover = ideaID
}

// Leave 在離開房間時清除計時器並盡力刪除在線記錄
// 瀏覽器被直接關閉時不保證執行，伺服器端有過期清掃作為後備
func (h *Heartbeat) Leave(ctx context.Context) error {
	h.Stop()
	return h.publisher.DeleteParticipant(ctx, h.sessionID)
}

// Stop 取消尚未觸發的去抖動寫入，之後的 Move 都會被忽略
// 避免寫入一個用戶已經離開的房間
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

func (h *Heartbeat) flush() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	record := h.record(h.x, h.y, h.hover)
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.publisher.UpsertParticipant(ctx, record); err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": h.sessionID,
			"user_id":    h.userID,
		}).WithError(err).Warn("Failed to publish cursor position")
	}
}

// record 必須在持鎖下呼叫
func (h *Heartbeat) record(x, y float64, hover *string) canvas.Participant {
	return canvas.Participant{
		SessionID:      h.sessionID,
		UserID:         h.userID,
		UserName:       h.userName,
		CursorX:        x,
		CursorY:        y,
		Color:          h.color,
		LastSeen:       h.now(),
		HoveringIdeaID: hover,
	}
}
