package service

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"brainstorm_web/pkg/canvas"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxFeedMessageSize = 512
)

// feedTopic 是訂閱的邏輯主題：同一個房間的同一張表
type feedTopic struct {
	SessionID string
	Table     string
}

// FeedClient 代表一個變更訂閱的 WebSocket 連接
type FeedClient struct {
	Conn      *websocket.Conn
	SessionID string
	Table     string
	SendChan  chan canvas.Event // 事件發送通道，用於異步傳送事件
}

// FeedService 管理所有的變更訂閱連接並廣播變更事件
// 每個 (表, 房間) 主題內的事件依發布順序送達
type FeedService struct {
	clients    map[feedTopic]map[*FeedClient]bool // topic -> client -> bool
	clientsMux sync.RWMutex                       // 保護 clients map 的讀寫鎖
}

// NewFeedService 創建並初始化新的變更訂閱服務
func NewFeedService() *FeedService {
	return &FeedService{
		clients: make(map[feedTopic]map[*FeedClient]bool),
	}
}

// HandleConnection 處理新的訂閱連接，阻塞直到連接關閉
func (s *FeedService) HandleConnection(conn *websocket.Conn, sessionID, table string) {
	client := &FeedClient{
		Conn:      conn,
		SessionID: sessionID,
		Table:     table,
		SendChan:  make(chan canvas.Event, 256),
	}

	s.addClient(client)

	// 確保連接關閉時清理資源
	defer func() {
		s.removeClient(client)
		conn.Close()
		close(client.SendChan)
	}()

	go s.writePump(client)
	s.readPump(client)
}

// readPump 只用於偵測客戶端關閉連接，訂閱是單向的
func (s *FeedService) readPump(client *FeedClient) {
	client.Conn.SetReadLimit(maxFeedMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithFields(logrus.Fields{
					"session_id": client.SessionID,
					"table":      client.Table,
				}).WithError(err).Warn("Feed connection closed unexpectedly")
			}
			break
		}
	}
}

// writePump 將事件從通道送到 WebSocket 連接，並定期發送心跳
func (s *FeedService) writePump(client *FeedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Publish 向訂閱了 (表, 房間) 主題的所有客戶端廣播一筆變更事件
// 在資料庫寫入提交之後呼叫，呼叫順序即送達順序
func (s *FeedService) Publish(sessionID, table string, kind canvas.EventKind, before, after interface{}) {
	event, err := canvas.NewEvent(kind, table, before, after)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": sessionID,
			"table":      table,
		}).WithError(err).Error("Failed to encode change event")
		return
	}

	// 在鎖內複製訂閱者清單，其他連接的清理可能同時在改 map
	s.clientsMux.RLock()
	topic := feedTopic{SessionID: sessionID, Table: table}
	clients := make([]*FeedClient, 0, len(s.clients[topic]))
	for client := range s.clients[topic] {
		clients = append(clients, client)
	}
	s.clientsMux.RUnlock()

	for _, client := range clients {
		select {
		case client.SendChan <- event:
			// 事件成功加入發送隊列
		default:
			// 客戶端消費太慢，關閉連接讓它重新訂閱
			s.removeClient(client)
			client.Conn.Close()
		}
	}
}

// SubscriberCount 獲取指定主題目前的訂閱數
func (s *FeedService) SubscriberCount(sessionID, table string) int {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	return len(s.clients[feedTopic{SessionID: sessionID, Table: table}])
}

// addClient 安全地添加新的訂閱連接
func (s *FeedService) addClient(client *FeedClient) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	topic := feedTopic{SessionID: client.SessionID, Table: client.Table}
	if s.clients[topic] == nil {
		s.clients[topic] = make(map[*FeedClient]bool)
	}
	s.clients[topic][client] = true
}

// removeClient 安全地移除訂閱連接
func (s *FeedService) removeClient(client *FeedClient) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	topic := feedTopic{SessionID: client.SessionID, Table: client.Table}
	if clients, ok := s.clients[topic]; ok {
		delete(clients, client)
		// 如果主題沒有訂閱者了，刪除主題
		if len(clients) == 0 {
			delete(s.clients, topic)
		}
	}
}
