package client

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"brainstorm_web/pkg/canvas"
)

// 變更訂閱斷線後的重連退避參數
const (
	resubscribeBaseDelay = time.Second
	resubscribeMaxDelay  = 30 * time.Second
)

// EventHandler 接收一筆變更事件
// 同一個 (表, 房間) 主題內的事件依伺服器發布順序送達
type EventHandler func(canvas.Event)

// Subscription 是一個 (表, 房間) 主題的有效訂閱
// 每個主題同時只應該有一個 Subscription，重複訂閱而不關閉舊的是資源洩漏
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn
}

// Close 取消訂閱並等待讀取迴圈結束
func (s *Subscription) Close() {
	s.cancel()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	<-s.done
}

// SubscribeFeed 訂閱一個 (表, 房間) 主題的變更事件
//
// 連線中斷時以指數退避重連（1s 起，翻倍至 30s 上限），重連成功後
// 呼叫 onResync，讓呼叫端重新抓取整份集合補回斷線期間漏掉的事件。
// 第一次撥號失敗直接回傳錯誤，不進入重試。
func (c *Client) SubscribeFeed(ctx context.Context, sessionID, table string, onEvent EventHandler, onResync func()) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, err := c.dialFeed(ctx, sessionID, table)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
		conn:   conn,
	}

	go sub.run(ctx, c, sessionID, table, onEvent, onResync)
	return sub, nil
}

func (s *Subscription) run(ctx context.Context, c *Client, sessionID, table string, onEvent EventHandler, onResync func()) {
	defer close(s.done)

	logCtx := logrus.WithFields(logrus.Fields{
		"session_id": sessionID,
		"table":      table,
	})

	delay := resubscribeBaseDelay
	for {
		s.readLoop(onEvent)

		if ctx.Err() != nil {
			return
		}

		// 斷線重連，退避逐步放大
		logCtx.WithField("delay", delay).Warn("Feed disconnected, resubscribing")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if delay *= 2; delay > resubscribeMaxDelay {
			delay = resubscribeMaxDelay
		}

		conn, err := c.dialFeed(ctx, sessionID, table)
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		delay = resubscribeBaseDelay

		// 補回斷線期間漏掉的事件
		if onResync != nil {
			onResync()
		}
	}
}

func (s *Subscription) readLoop(onEvent EventHandler) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	for {
		var event canvas.Event
		if err := conn.ReadJSON(&event); err != nil {
			conn.Close()
			return
		}
		onEvent(event)
	}
}

func (c *Client) dialFeed(ctx context.Context, sessionID, table string) (*websocket.Conn, error) {
	url := c.feedURL(sessionID, table)
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	return conn, err
}

func (c *Client) feedURL(sessionID, table string) string {
	url := c.baseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/api/sessions/" + sessionID + "/feed?table=" + table
}
