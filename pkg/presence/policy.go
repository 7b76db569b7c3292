// Package presence 管理本地用戶的在線狀態發布與其他參與者的過期判斷。
package presence

import (
	"time"

	"brainstorm_web/pkg/canvas"
)

// Policy 是以 last_seen 為基準的過期門檻
// 過期判斷是純粹的時間函數，由消費端重算，不寫入存儲
type Policy struct {
	HideAfter    time.Duration // 超過後不再顯示游標
	EvictAfter   time.Duration // 超過後從本地工作集移除
	ActiveWithin time.Duration // 之內視為正在移動（僅供動畫強度使用）
	SweepEvery   time.Duration // 定期清掃間隔
}

// DefaultPolicy 是唯一的標準門檻組合
var DefaultPolicy = Policy{
	HideAfter:    30 * time.Second,
	EvictAfter:   5 * time.Minute,
	ActiveWithin: 5 * time.Second,
	SweepEvery:   30 * time.Second,
}

// Visible 回報參與者是否應該被渲染
func (p Policy) Visible(participant canvas.Participant, now time.Time) bool {
	return now.Sub(participant.LastSeen) <= p.HideAfter
}

// Active 回報參與者是否視為正在移動
func (p Policy) Active(participant canvas.Participant, now time.Time) bool {
	return now.Sub(participant.LastSeen) <= p.ActiveWithin
}

// Expired 回報參與者是否應該從本地工作集移除
func (p Policy) Expired(participant canvas.Participant, now time.Time) bool {
	return now.Sub(participant.LastSeen) > p.EvictAfter
}
