package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainstorm_web/pkg/canvas"
)

// fakeCanvasServer 模擬實體存儲與變更訂閱的最小伺服器端，
// 只實作 RoomSession 會用到的路由
type fakeCanvasServer struct {
	mu           sync.Mutex
	ideas        []canvas.Idea
	deleteStatus int // 非零時刪除便利貼回傳此狀態碼

	upgrader websocket.Upgrader
}

func newFakeCanvasServer(ideas ...canvas.Idea) *fakeCanvasServer {
	return &fakeCanvasServer{
		ideas: ideas,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *fakeCanvasServer) setDeleteStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteStatus = code
}

func (s *fakeCanvasServer) listIdeas() []canvas.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]canvas.Idea, len(s.ideas))
	copy(out, s.ideas)
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *fakeCanvasServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"token": "t", "user_id": "u1", "user_name": "Alice"})
	})
	mux.HandleFunc("GET /api/sessions/{id}/ideas", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.listIdeas())
	})
	mux.HandleFunc("DELETE /api/sessions/{id}/ideas/{ideaID}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.deleteStatus != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(s.deleteStatus)
			json.NewEncoder(w).Encode(map[string]string{"error": "刪除便利貼失敗"})
			return
		}
		id := r.PathValue("ideaID")
		for i, idea := range s.ideas {
			if idea.ID == id {
				s.ideas = append(s.ideas[:i], s.ideas[i+1:]...)
				break
			}
		}
		writeJSON(w, map[string]string{"message": "便利貼已刪除"})
	})
	mux.HandleFunc("GET /api/sessions/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []canvas.Message{})
	})
	mux.HandleFunc("GET /api/sessions/{id}/participants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []canvas.Participant{})
	})
	mux.HandleFunc("PUT /api/sessions/{id}/participants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("DELETE /api/sessions/{id}/participants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"message": "已離開房間"})
	})
	mux.HandleFunc("GET /api/sessions/{id}/feed", func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// 佔住連接直到客戶端關閉
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	})
	return mux
}

// joinTestRoom 登入並加入房間，回傳已連接的 RoomSession
func joinTestRoom(t *testing.T, srv *fakeCanvasServer) *RoomSession {
	t.Helper()
	server := httptest.NewServer(srv.handler())
	t.Cleanup(server.Close)

	c := New(server.URL)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "alice", "password"))

	rs, err := c.JoinRoom(ctx, "s1", "#3b82f6")
	require.NoError(t, err)
	t.Cleanup(func() { rs.Leave(ctx) })
	return rs
}

func TestJoinRoomFetchesInitialState(t *testing.T) {
	srv := newFakeCanvasServer(canvas.Idea{ID: "i1", SessionID: "s1", Content: "X"})
	rs := joinTestRoom(t, srv)

	ideas := rs.Ideas()
	require.Equal(t, 1, len(ideas))
	assert.Equal(t, "i1", ideas[0].ID)
}

// 刪除失敗時重新抓取整份集合：伺服器仍保留的便利貼回到本地，
// 不做局部回滾
func TestDeleteIdeaFailureResyncs(t *testing.T) {
	srv := newFakeCanvasServer(canvas.Idea{ID: "i1", SessionID: "s1", Content: "X"})
	rs := joinTestRoom(t, srv)

	srv.setDeleteStatus(http.StatusInternalServerError)
	err := rs.DeleteIdea(context.Background(), "i1")
	require.Error(t, err)

	// 樂觀移除被補償性重新同步復原
	ideas := rs.Ideas()
	require.Equal(t, 1, len(ideas))
	assert.Equal(t, "i1", ideas[0].ID)
}

// 刪除成功時本地與伺服器一致收斂到不含該便利貼
func TestDeleteIdeaSuccessConverges(t *testing.T) {
	srv := newFakeCanvasServer(canvas.Idea{ID: "i1", SessionID: "s1", Content: "X"})
	rs := joinTestRoom(t, srv)

	require.NoError(t, rs.DeleteIdea(context.Background(), "i1"))

	assert.Equal(t, 0, len(rs.Ideas()))
	assert.Equal(t, 0, len(srv.listIdeas()))
}

// 重複離開房間只有第一次生效，不會 panic
func TestLeaveIsIdempotent(t *testing.T) {
	srv := newFakeCanvasServer()
	rs := joinTestRoom(t, srv)

	ctx := context.Background()
	require.NoError(t, rs.Leave(ctx))
	assert.NotPanics(t, func() {
		assert.NoError(t, rs.Leave(ctx))
	})
}
