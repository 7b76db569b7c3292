package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainstorm_web/pkg/canvas"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newFeedServer 啟動一個測試伺服器，路徑格式 /{sessionID}/{table}
func newFeedServer(t *testing.T, svc *FeedService) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		require.Equal(t, 2, len(parts))

		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		svc.HandleConnection(conn, parts[0], parts[1])
	}))
	t.Cleanup(server.Close)
	return server
}

func dialFeed(t *testing.T, server *httptest.Server, sessionID, table string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/" + sessionID + "/" + table
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForSubscribers 等待連接完成註冊，HandleConnection 在 goroutine 中執行
func waitForSubscribers(t *testing.T, svc *FeedService, sessionID, table string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.SubscriberCount(sessionID, table) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("topic (%s, %s) 訂閱數未達到 %d", sessionID, table, want)
}

func readEvent(t *testing.T, conn *websocket.Conn) canvas.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event canvas.Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

// 同一主題的所有訂閱者都收到事件，其他主題不受影響
func TestPublishFansOutToTopic(t *testing.T) {
	svc := NewFeedService()
	server := newFeedServer(t, svc)

	connA := dialFeed(t, server, "s1", canvas.TableIdeas)
	connB := dialFeed(t, server, "s1", canvas.TableIdeas)
	other := dialFeed(t, server, "s1", canvas.TableMessages)
	waitForSubscribers(t, svc, "s1", canvas.TableIdeas, 2)
	waitForSubscribers(t, svc, "s1", canvas.TableMessages, 1)

	idea := canvas.Idea{ID: "i1", SessionID: "s1", Content: "X"}
	svc.Publish("s1", canvas.TableIdeas, canvas.EventInsert, nil, idea)

	for _, conn := range []*websocket.Conn{connA, connB} {
		event := readEvent(t, conn)
		assert.Equal(t, canvas.EventInsert, event.Kind)
		assert.Equal(t, canvas.TableIdeas, event.Table)

		var got canvas.Idea
		require.NoError(t, json.Unmarshal(event.After, &got))
		assert.Equal(t, "i1", got.ID)
	}

	// messages 主題的訂閱者不應該收到任何東西
	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var event canvas.Event
	assert.Error(t, other.ReadJSON(&event))
}

// 不同房間是不同的主題
func TestPublishIsScopedToSession(t *testing.T) {
	svc := NewFeedService()
	server := newFeedServer(t, svc)

	conn := dialFeed(t, server, "s2", canvas.TableIdeas)
	waitForSubscribers(t, svc, "s2", canvas.TableIdeas, 1)

	svc.Publish("s1", canvas.TableIdeas, canvas.EventInsert, nil, canvas.Idea{ID: "i1", SessionID: "s1"})

	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var event canvas.Event
	assert.Error(t, conn.ReadJSON(&event))
}

// 事件依發布順序送達
func TestPublishPreservesOrder(t *testing.T) {
	svc := NewFeedService()
	server := newFeedServer(t, svc)

	conn := dialFeed(t, server, "s1", canvas.TableIdeas)
	waitForSubscribers(t, svc, "s1", canvas.TableIdeas, 1)

	for i := 0; i < 20; i++ {
		idea := canvas.Idea{ID: fmt.Sprintf("i%d", i), SessionID: "s1"}
		svc.Publish("s1", canvas.TableIdeas, canvas.EventInsert, nil, idea)
	}

	for i := 0; i < 20; i++ {
		event := readEvent(t, conn)
		var got canvas.Idea
		require.NoError(t, json.Unmarshal(event.After, &got))
		assert.Equal(t, fmt.Sprintf("i%d", i), got.ID)
	}
}

// delete 事件攜帶 before 而不是 after
func TestPublishDeleteCarriesBefore(t *testing.T) {
	svc := NewFeedService()
	server := newFeedServer(t, svc)

	conn := dialFeed(t, server, "s1", canvas.TableParticipants)
	waitForSubscribers(t, svc, "s1", canvas.TableParticipants, 1)

	p := canvas.Participant{SessionID: "s1", UserID: "u1"}
	svc.Publish("s1", canvas.TableParticipants, canvas.EventDelete, p, nil)

	event := readEvent(t, conn)
	assert.Equal(t, canvas.EventDelete, event.Kind)
	assert.Nil(t, event.After)

	var got canvas.Participant
	require.NoError(t, json.Unmarshal(event.Before, &got))
	assert.Equal(t, "u1", got.UserID)
}

// 連接關閉後從主題移除
func TestDisconnectRemovesSubscriber(t *testing.T) {
	svc := NewFeedService()
	server := newFeedServer(t, svc)

	conn := dialFeed(t, server, "s1", canvas.TableIdeas)
	waitForSubscribers(t, svc, "s1", canvas.TableIdeas, 1)

	conn.Close()
	waitForSubscribers(t, svc, "s1", canvas.TableIdeas, 0)
}
