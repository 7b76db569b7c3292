// Package reconcile 維護一份依到達順序排列的實體集合，
// 合併兩個並發輸入：本地樂觀寫入的回覆，以及變更訂閱的事件回聲。
//
// 同一筆寫入的確認與事件回聲到達順序不固定，集合以 id 去重，
// 兩種順序最終收斂到相同狀態。
package reconcile

import "sync"

// Kind 是套用到集合上的變更種類
type Kind int

const (
	Insert Kind = iota
	Update
	Delete
)

// Change 是一筆要套用到集合的變更
// Insert/Update 使用 After，Delete 使用 Before
type Change[T any] struct {
	Kind   Kind
	Before T
	After  T
}

// Collection 是一份執行緒安全、依插入順序排列且 id 唯一的集合
type Collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	id     func(T) string
	accept func(T) bool
}

// New 建立集合。id 取出實體的唯一識別；accept 為 nil 時接受所有實體，
// 否則回傳 false 的實體一律忽略（用於防禦性過濾其他房間的事件）。
func New[T any](id func(T) string, accept func(T) bool) *Collection[T] {
	if id == nil {
		panic("reconcile: id function must not be nil")
	}
	return &Collection[T]{id: id, accept: accept}
}

// Add 樂觀插入一筆實體，若同 id 已存在（訂閱回聲先到）則忽略。
// 回傳是否實際加入。
func (c *Collection[T]) Add(v T) bool {
	if c.accept != nil && !c.accept(v) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(c.id(v)) >= 0 {
		return false
	}
	c.items = append(c.items, v)
	return true
}

// Remove 移除指定 id 的實體，回傳是否有移除
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Apply 套用一筆變更事件：
//   - Insert: 同 id 已存在視為樂觀插入的重複，忽略
//   - Update: 原地替換，保持排序位置；找不到視為漏掉的 insert，改為附加
//   - Delete: 移除對應 id
//
// 回傳集合是否有變動。
func (c *Collection[T]) Apply(ch Change[T]) bool {
	switch ch.Kind {
	case Insert:
		return c.Add(ch.After)
	case Update:
		if c.accept != nil && !c.accept(ch.After) {
			return false
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if i := c.indexOf(c.id(ch.After)); i >= 0 {
			c.items[i] = ch.After
			return true
		}
		c.items = append(c.items, ch.After)
		return true
	case Delete:
		return c.Remove(c.id(ch.Before))
	}
	return false
}

// Reset 以重新抓取的完整結果取代整份集合
// 用於樂觀刪除失敗後的補償性重新同步
func (c *Collection[T]) Reset(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.items[:0]
	seen := make(map[string]struct{}, len(items))
	for _, v := range items {
		if c.accept != nil && !c.accept(v) {
			continue
		}
		id := c.id(v)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		c.items = append(c.items, v)
	}
}

// Get 依 id 取出實體
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, false
	}
	return c.items[i], true
}

// Snapshot 回傳目前集合內容的複本
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len 回傳集合大小
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Filter 回傳通過 keep 的實體複本，保持原有順序
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for _, v := range c.items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Evict 移除所有 drop 回傳 true 的實體，回傳移除數量
// 用於定期清掃過期的在線記錄
func (c *Collection[T]) Evict(drop func(T) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	removed := 0
	for _, v := range c.items {
		if drop(v) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	c.items = kept
	return removed
}

// indexOf 必須在持鎖下呼叫
func (c *Collection[T]) indexOf(id string) int {
	for i, v := range c.items {
		if c.id(v) == id {
			return i
		}
	}
	return -1
}
