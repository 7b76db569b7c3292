package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"brainstorm_web/pkg/canvas"
)

func ideaCollection(sessionID string) *Collection[canvas.Idea] {
	return New(
		func(i canvas.Idea) string { return i.ID },
		func(i canvas.Idea) bool { return i.SessionID == sessionID },
	)
}

func idea(id, sessionID, content string) canvas.Idea {
	return canvas.Idea{ID: id, SessionID: sessionID, Content: content}
}

// 樂觀插入先到，訂閱回聲後到：回聲必須被當作重複忽略
func TestOptimisticThenEcho(t *testing.T) {
	c := ideaCollection("s1")

	assert.True(t, c.Add(idea("i1", "s1", "X")))
	assert.False(t, c.Apply(Change[canvas.Idea]{Kind: Insert, After: idea("i1", "s1", "X")}))

	assert.Equal(t, 1, c.Len())
	got, ok := c.Get("i1")
	assert.True(t, ok)
	assert.Equal(t, "X", got.Content)
}

// 訂閱回聲先到，樂觀插入後到：插入必須被去重
func TestEchoThenOptimistic(t *testing.T) {
	c := ideaCollection("s1")

	assert.True(t, c.Apply(Change[canvas.Idea]{Kind: Insert, After: idea("i1", "s1", "X")}))
	assert.False(t, c.Add(idea("i1", "s1", "X")))

	assert.Equal(t, 1, c.Len())
}

// 同一筆 insert 事件重複送達也只會留下一筆
func TestDuplicateInsertEvents(t *testing.T) {
	c := ideaCollection("s1")
	ev := Change[canvas.Idea]{Kind: Insert, After: idea("i1", "s1", "X")}

	assert.True(t, c.Apply(ev))
	assert.False(t, c.Apply(ev))
	assert.False(t, c.Apply(ev))

	assert.Equal(t, 1, c.Len())
}

// update 原地替換，不改變集合的排序
func TestUpdatePreservesOrder(t *testing.T) {
	c := ideaCollection("s1")
	for i := 1; i <= 3; i++ {
		c.Add(idea(fmt.Sprintf("i%d", i), "s1", "old"))
	}

	assert.True(t, c.Apply(Change[canvas.Idea]{Kind: Update, After: idea("i2", "s1", "new")}))

	snapshot := c.Snapshot()
	assert.Equal(t, []string{"i1", "i2", "i3"}, []string{snapshot[0].ID, snapshot[1].ID, snapshot[2].ID})
	assert.Equal(t, "new", snapshot[1].Content)
}

// 沒見過的 id 收到 update 視為漏掉的 insert，附加到尾端
func TestUpdateUnknownAppends(t *testing.T) {
	c := ideaCollection("s1")
	c.Add(idea("i1", "s1", "X"))

	assert.True(t, c.Apply(Change[canvas.Idea]{Kind: Update, After: idea("i9", "s1", "late")}))

	snapshot := c.Snapshot()
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "i9", snapshot[1].ID)
}

func TestDeleteEvent(t *testing.T) {
	c := ideaCollection("s1")
	c.Add(idea("i1", "s1", "X"))
	c.Add(idea("i2", "s1", "Y"))

	assert.True(t, c.Apply(Change[canvas.Idea]{Kind: Delete, Before: idea("i1", "s1", "X")}))
	assert.False(t, c.Apply(Change[canvas.Idea]{Kind: Delete, Before: idea("i1", "s1", "X")}))

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("i1")
	assert.False(t, ok)
}

// 其他房間的事件必須被防禦性忽略
func TestAcceptFilterIgnoresOtherSessions(t *testing.T) {
	c := ideaCollection("s1")

	assert.False(t, c.Add(idea("i1", "s2", "foreign")))
	assert.False(t, c.Apply(Change[canvas.Idea]{Kind: Insert, After: idea("i2", "s2", "foreign")}))
	assert.Equal(t, 0, c.Len())
}

// 刪除失敗後以 Reset 重新同步：重複 id 與外部房間的列都會被清掉
func TestResetDeduplicates(t *testing.T) {
	c := ideaCollection("s1")
	c.Add(idea("stale", "s1", "gone"))

	c.Reset([]canvas.Idea{
		idea("i1", "s1", "X"),
		idea("i1", "s1", "X"),
		idea("i2", "s2", "foreign"),
		idea("i3", "s1", "Y"),
	})

	snapshot := c.Snapshot()
	assert.Equal(t, 2, len(snapshot))
	assert.Equal(t, "i1", snapshot[0].ID)
	assert.Equal(t, "i3", snapshot[1].ID)
}

// 兩個客戶端的情境：A 的樂觀插入加上回聲、B 的寫入只靠回聲，
// 最終集合必須是兩筆且保持建立順序
func TestTwoWriterScenario(t *testing.T) {
	c := ideaCollection("s1")

	// A 自己的寫入：先樂觀插入，再收到回聲
	assert.True(t, c.Add(idea("i1", "s1", "X")))
	assert.False(t, c.Apply(Change[canvas.Idea]{Kind: Insert, After: idea("i1", "s1", "X")}))

	// B 的寫入只會以事件形式到達
	assert.True(t, c.Apply(Change[canvas.Idea]{Kind: Insert, After: idea("i2", "s1", "Y")}))

	snapshot := c.Snapshot()
	assert.Equal(t, 2, len(snapshot))
	assert.Equal(t, "i1", snapshot[0].ID)
	assert.Equal(t, "X", snapshot[0].Content)
	assert.Equal(t, "i2", snapshot[1].ID)
}

func TestEvict(t *testing.T) {
	c := ideaCollection("s1")
	c.Add(idea("i1", "s1", "keep"))
	c.Add(idea("i2", "s1", "drop"))
	c.Add(idea("i3", "s1", "drop"))

	removed := c.Evict(func(i canvas.Idea) bool { return i.Content == "drop" })

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("i1")
	assert.True(t, ok)
}

func TestFilter(t *testing.T) {
	c := ideaCollection("s1")
	c.Add(idea("i1", "s1", "a"))
	c.Add(idea("i2", "s1", "b"))

	got := c.Filter(func(i canvas.Idea) bool { return i.Content == "b" })
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "i2", got[0].ID)
}
