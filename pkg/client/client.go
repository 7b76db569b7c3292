// Package client 是畫布的 Go 客戶端：透過 REST 存取實體，透過
// WebSocket 訂閱變更事件，並在 RoomSession 中把樂觀寫入與事件回聲
// 調和成單一的顯示集合。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"brainstorm_web/pkg/canvas"
)

// APIError 是伺服器回傳的錯誤
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client 是實體存儲的 REST 客戶端
type Client struct {
	baseURL  string
	http     *http.Client
	token    string
	userID   string
	userName string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// UserID 回傳登入後的用戶識別
func (c *Client) UserID() string { return c.userID }

// UserName 回傳登入後的用戶名稱
func (c *Client) UserName() string { return c.userName }

// Register 註冊新用戶
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.do(ctx, http.MethodPost, "/api/register", body, nil)
}

// Login 登入並保存 token，之後的請求都會帶上
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var out struct {
		Token    string `json:"token"`
		UserID   string `json:"user_id"`
		UserName string `json:"user_name"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &out); err != nil {
		return err
	}
	c.token = out.Token
	c.userID = out.UserID
	c.userName = out.UserName
	return nil
}

// Logout 清除本地保存的身份
func (c *Client) Logout() {
	c.token = ""
	c.userID = ""
	c.userName = ""
}

// CurrentUser 向伺服器確認 token 仍然有效
func (c *Client) CurrentUser(ctx context.Context) (canvas.Session, error) {
	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &user); err != nil {
		return canvas.Session{}, err
	}
	return canvas.Session{ID: user.ID, Title: user.Username}, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]canvas.Session, error) {
	var sessions []canvas.Session
	err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &sessions)
	return sessions, err
}

func (c *Client) CreateSession(ctx context.Context, title string) (canvas.Session, error) {
	var session canvas.Session
	err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"title": title}, &session)
	return session, err
}

func (c *Client) GetSession(ctx context.Context, id string) (canvas.Session, error) {
	var session canvas.Session
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+id, nil, &session)
	return session, err
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+id, nil, nil)
}

func (c *Client) ListIdeas(ctx context.Context, sessionID string) ([]canvas.Idea, error) {
	var ideas []canvas.Idea
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/ideas", nil, &ideas)
	return ideas, err
}

// CreateIdea 新增便利貼，回傳帶伺服器分配 id 與時間戳的完整記錄
func (c *Client) CreateIdea(ctx context.Context, sessionID, content string, x, y float64, color string) (canvas.Idea, error) {
	body := map[string]interface{}{"content": content, "x": x, "y": y, "color": color}
	var idea canvas.Idea
	err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/ideas", body, &idea)
	return idea, err
}

func (c *Client) UpdateIdeaContent(ctx context.Context, sessionID, ideaID, content string) (canvas.Idea, error) {
	var idea canvas.Idea
	err := c.do(ctx, http.MethodPatch,
		"/api/sessions/"+sessionID+"/ideas/"+ideaID, map[string]string{"content": content}, &idea)
	return idea, err
}

func (c *Client) UpdateIdeaPosition(ctx context.Context, sessionID, ideaID string, x, y float64) (canvas.Idea, error) {
	body := map[string]float64{"x": x, "y": y}
	var idea canvas.Idea
	err := c.do(ctx, http.MethodPatch, "/api/sessions/"+sessionID+"/ideas/"+ideaID, body, &idea)
	return idea, err
}

func (c *Client) DeleteIdea(ctx context.Context, sessionID, ideaID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+sessionID+"/ideas/"+ideaID, nil, nil)
}

func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]canvas.Message, error) {
	var messages []canvas.Message
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/messages", nil, &messages)
	return messages, err
}

// SendMessage 發送聊天訊息，回傳帶伺服器分配 id 與時間戳的完整記錄
func (c *Client) SendMessage(ctx context.Context, sessionID, text, color string) (canvas.Message, error) {
	body := map[string]string{"message": text, "color": color}
	var message canvas.Message
	err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/messages", body, &message)
	return message, err
}

func (c *Client) ListParticipants(ctx context.Context, sessionID string) ([]canvas.Participant, error) {
	var participants []canvas.Participant
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/participants", nil, &participants)
	return participants, err
}

// UpsertParticipant 寫入自己的完整在線記錄，實作 presence.Publisher
func (c *Client) UpsertParticipant(ctx context.Context, p canvas.Participant) error {
	body := map[string]interface{}{
		"cursor_x":         p.CursorX,
		"cursor_y":         p.CursorY,
		"color":            p.Color,
		"hovering_idea_id": p.HoveringIdeaID,
	}
	return c.do(ctx, http.MethodPut, "/api/sessions/"+p.SessionID+"/participants", body, nil)
}

// DeleteParticipant 刪除自己的在線記錄，實作 presence.Publisher
func (c *Client) DeleteParticipant(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+sessionID+"/participants", nil, nil)
}

// do 執行一次 API 請求，非 2xx 回應轉換成 APIError
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
