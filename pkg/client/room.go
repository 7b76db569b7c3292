package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"brainstorm_web/pkg/arrange"
	"brainstorm_web/pkg/canvas"
	"brainstorm_web/pkg/presence"
	"brainstorm_web/pkg/reconcile"
)

// RoomSession 是加入一個房間後的即時狀態：三份以 id 去重的集合
// （便利貼、參與者、訊息），由本地樂觀寫入與變更訂閱共同餵入。
type RoomSession struct {
	client    *Client
	sessionID string
	policy    presence.Policy

	ideas        *reconcile.Collection[canvas.Idea]
	participants *reconcile.Collection[canvas.Participant]
	messages     *reconcile.Collection[canvas.Message]

	heartbeat *presence.Heartbeat
	subs      []*Subscription
	stopSweep chan struct{}
	leaveOnce sync.Once
}

// JoinRoom 進入房間：抓取三份集合的初始狀態、建立三條訂閱、
// 寫入初始在線記錄，並啟動過期參與者的定期清掃。
func (c *Client) JoinRoom(ctx context.Context, sessionID, color string) (*RoomSession, error) {
	if c.userID == "" {
		return nil, fmt.Errorf("join room: not logged in")
	}

	rs := &RoomSession{
		client:    c,
		sessionID: sessionID,
		policy:    presence.DefaultPolicy,
		stopSweep: make(chan struct{}),
	}

	// 事件有伺服器端的主題過濾，這裡再防禦性地過濾一次房間
	rs.ideas = reconcile.New(
		func(i canvas.Idea) string { return i.ID },
		func(i canvas.Idea) bool { return i.SessionID == sessionID },
	)
	rs.messages = reconcile.New(
		func(m canvas.Message) string { return m.ID },
		func(m canvas.Message) bool { return m.SessionID == sessionID },
	)
	// 自己的游標不放進工作集，由本地直接渲染
	rs.participants = reconcile.New(
		func(p canvas.Participant) string { return p.UserID },
		func(p canvas.Participant) bool {
			return p.SessionID == sessionID && p.UserID != c.userID
		},
	)

	// 初始抓取失敗視為進房失敗，集合保持為空
	if err := rs.refetchIdeas(ctx); err != nil {
		return nil, fmt.Errorf("fetch ideas: %w", err)
	}
	if err := rs.refetchMessages(ctx); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	if err := rs.refetchParticipants(ctx); err != nil {
		return nil, fmt.Errorf("fetch participants: %w", err)
	}

	// 每個實體類型一條訂閱，重連後重新抓取整份集合
	type feedSpec struct {
		table    string
		onEvent  EventHandler
		onResync func()
	}
	background := context.Background()
	for _, spec := range []feedSpec{
		{canvas.TableIdeas, rs.onIdeaEvent, func() { rs.refetchIdeas(background) }},
		{canvas.TableMessages, rs.onMessageEvent, func() { rs.refetchMessages(background) }},
		{canvas.TableParticipants, rs.onParticipantEvent, func() { rs.refetchParticipants(background) }},
	} {
		sub, err := c.SubscribeFeed(ctx, sessionID, spec.table, spec.onEvent, spec.onResync)
		if err != nil {
			rs.closeSubs()
			return nil, fmt.Errorf("subscribe %s: %w", spec.table, err)
		}
		rs.subs = append(rs.subs, sub)
	}

	rs.heartbeat = presence.NewHeartbeat(c, sessionID, c.userID, c.userName, color)
	if err := rs.heartbeat.Join(ctx); err != nil {
		rs.closeSubs()
		return nil, fmt.Errorf("join presence: %w", err)
	}

	go rs.sweepLoop()
	return rs, nil
}

// Leave 離開房間：關閉所有訂閱、取消未觸發的游標寫入、
// 盡力刪除自己的在線記錄。重複呼叫只有第一次生效。
func (rs *RoomSession) Leave(ctx context.Context) error {
	var err error
	rs.leaveOnce.Do(func() {
		close(rs.stopSweep)
		rs.closeSubs()
		err = rs.heartbeat.Leave(ctx)
	})
	return err
}

// Ideas 回傳目前的便利貼集合，依建立時間由舊到新
func (rs *RoomSession) Ideas() []canvas.Idea {
	return rs.ideas.Snapshot()
}

// Messages 回傳目前的訊息集合，依建立時間由舊到新
func (rs *RoomSession) Messages() []canvas.Message {
	return rs.messages.Snapshot()
}

// VisibleParticipants 回傳應該被渲染的其他參與者
// （last_seen 在顯示門檻內）
func (rs *RoomSession) VisibleParticipants() []canvas.Participant {
	now := time.Now()
	return rs.participants.Filter(func(p canvas.Participant) bool {
		return rs.policy.Visible(p, now)
	})
}

// AddIdea 新增便利貼並樂觀插入本地集合
// 訂閱回聲先到時插入會被去重，兩種順序收斂到相同狀態
func (rs *RoomSession) AddIdea(ctx context.Context, content string, x, y float64, color string) (canvas.Idea, error) {
	idea, err := rs.client.CreateIdea(ctx, rs.sessionID, content, x, y, color)
	if err != nil {
		return canvas.Idea{}, err
	}
	rs.ideas.Add(idea)
	return idea, nil
}

// MoveIdea 更新便利貼位置，集合等待訂閱回聲或以回應直接更新
func (rs *RoomSession) MoveIdea(ctx context.Context, ideaID string, x, y float64) error {
	idea, err := rs.client.UpdateIdeaPosition(ctx, rs.sessionID, ideaID, x, y)
	if err != nil {
		return err
	}
	rs.ideas.Apply(reconcile.Change[canvas.Idea]{Kind: reconcile.Update, After: idea})
	return nil
}

// EditIdea 更新便利貼內容
func (rs *RoomSession) EditIdea(ctx context.Context, ideaID, content string) error {
	idea, err := rs.client.UpdateIdeaContent(ctx, rs.sessionID, ideaID, content)
	if err != nil {
		return err
	}
	rs.ideas.Apply(reconcile.Change[canvas.Idea]{Kind: reconcile.Update, After: idea})
	return nil
}

// DeleteIdea 先從本地集合樂觀移除再發出刪除
// 刪除失敗時重新抓取整份集合作為補償，不做局部回滾
func (rs *RoomSession) DeleteIdea(ctx context.Context, ideaID string) error {
	rs.ideas.Remove(ideaID)
	if err := rs.client.DeleteIdea(ctx, rs.sessionID, ideaID); err != nil {
		if refetchErr := rs.refetchIdeas(ctx); refetchErr != nil {
			logrus.WithField("session_id", rs.sessionID).
				WithError(refetchErr).Error("Failed to resync ideas after delete failure")
		}
		return err
	}
	return nil
}

// Send 發送聊天訊息並樂觀插入本地集合
func (rs *RoomSession) Send(ctx context.Context, text, color string) (canvas.Message, error) {
	message, err := rs.client.SendMessage(ctx, rs.sessionID, text, color)
	if err != nil {
		return canvas.Message{}, err
	}
	rs.messages.Add(message)
	return message, nil
}

// MoveCursor 記錄一次游標移動，50ms 視窗內只寫入最後的位置
func (rs *RoomSession) MoveCursor(x, y float64) {
	rs.heartbeat.Move(x, y)
}

// Hover 記錄游標停留的便利貼，搭上下一次位置寫入
func (rs *RoomSession) Hover(ideaID *string) {
	rs.heartbeat.Hover(ideaID)
}

// Arrange 依策略計算目標位置並逐筆持久化
// 集合的更新依賴訂閱的 update 事件回流
func (rs *RoomSession) Arrange(ctx context.Context, strategy arrange.Strategy, width, height float64) error {
	placements := arrange.Arrange(strategy, rs.ideas.Snapshot(), width, height)
	for _, p := range placements {
		if _, err := rs.client.UpdateIdeaPosition(ctx, rs.sessionID, p.ID, p.X, p.Y); err != nil {
			return fmt.Errorf("arrange idea %s: %w", p.ID, err)
		}
	}
	return nil
}

func (rs *RoomSession) onIdeaEvent(event canvas.Event) {
	change, err := decodeChange[canvas.Idea](event)
	if err != nil {
		logrus.WithError(err).Warn("Dropping malformed idea event")
		return
	}
	rs.ideas.Apply(change)
}

func (rs *RoomSession) onMessageEvent(event canvas.Event) {
	change, err := decodeChange[canvas.Message](event)
	if err != nil {
		logrus.WithError(err).Warn("Dropping malformed message event")
		return
	}
	rs.messages.Apply(change)
}

func (rs *RoomSession) onParticipantEvent(event canvas.Event) {
	change, err := decodeChange[canvas.Participant](event)
	if err != nil {
		logrus.WithError(err).Warn("Dropping malformed participant event")
		return
	}
	rs.participants.Apply(change)
}

// sweepLoop 定期從工作集移除過期的參與者，控制記憶體並避免渲染殘影
func (rs *RoomSession) sweepLoop() {
	ticker := time.NewTicker(rs.policy.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-rs.stopSweep:
			return
		case <-ticker.C:
			now := time.Now()
			rs.participants.Evict(func(p canvas.Participant) bool {
				return rs.policy.Expired(p, now)
			})
		}
	}
}

func (rs *RoomSession) refetchIdeas(ctx context.Context) error {
	ideas, err := rs.client.ListIdeas(ctx, rs.sessionID)
	if err != nil {
		return err
	}
	rs.ideas.Reset(ideas)
	return nil
}

func (rs *RoomSession) refetchMessages(ctx context.Context) error {
	messages, err := rs.client.ListMessages(ctx, rs.sessionID)
	if err != nil {
		return err
	}
	rs.messages.Reset(messages)
	return nil
}

func (rs *RoomSession) refetchParticipants(ctx context.Context) error {
	participants, err := rs.client.ListParticipants(ctx, rs.sessionID)
	if err != nil {
		return err
	}
	rs.participants.Reset(participants)
	return nil
}

func (rs *RoomSession) closeSubs() {
	for _, sub := range rs.subs {
		sub.Close()
	}
	rs.subs = nil
}

// decodeChange 把事件封包轉成可套用的變更
func decodeChange[T any](event canvas.Event) (reconcile.Change[T], error) {
	var change reconcile.Change[T]
	switch event.Kind {
	case canvas.EventInsert:
		change.Kind = reconcile.Insert
		if err := json.Unmarshal(event.After, &change.After); err != nil {
			return change, err
		}
	case canvas.EventUpdate:
		change.Kind = reconcile.Update
		if err := json.Unmarshal(event.After, &change.After); err != nil {
			return change, err
		}
	case canvas.EventDelete:
		change.Kind = reconcile.Delete
		if err := json.Unmarshal(event.Before, &change.Before); err != nil {
			return change, err
		}
	default:
		return change, fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return change, nil
}
