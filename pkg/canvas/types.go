// Package canvas 定義客戶端與伺服器之間共用的實體與變更事件格式。
package canvas

import (
	"encoding/json"
	"time"
)

// 變更訂閱的表名
const (
	TableIdeas        = "ideas"
	TableParticipants = "participants"
	TableMessages     = "messages"
)

// Session 表示一個腦力激盪房間
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Idea 表示畫布上的一張便利貼
type Idea struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Content   string    `json:"content"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant 是一筆在線狀態記錄
type Participant struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	CursorX        float64   `json:"cursor_x"`
	CursorY        float64   `json:"cursor_y"`
	Color          string    `json:"color"`
	LastSeen       time.Time `json:"last_seen"`
	HoveringIdeaID *string   `json:"hovering_idea_id,omitempty"`
}

// Message 表示一則聊天訊息
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// EventKind 是變更事件的種類
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event 是變更訂閱送出的事件封包
// insert/update 帶 after，delete 帶 before
type Event struct {
	Kind   EventKind       `json:"kind"`
	Table  string          `json:"table"`
	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`
}

// NewEvent 將前後狀態序列化成事件封包，nil 欄位會被省略
func NewEvent(kind EventKind, table string, before, after interface{}) (Event, error) {
	ev := Event{Kind: kind, Table: table}
	if before != nil {
		raw, err := json.Marshal(before)
		if err != nil {
			return Event{}, err
		}
		ev.Before = raw
	}
	if after != nil {
		raw, err := json.Marshal(after)
		if err != nil {
			return Event{}, err
		}
		ev.After = raw
	}
	return ev, nil
}
