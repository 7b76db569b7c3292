// Package arrange 計算便利貼在畫布上的目標位置。
// 所有策略都是 (ideas, 畫布寬高) 的純函數，不修改輸入也不寫入存儲；
// 呼叫端負責將結果逐筆持久化。
package arrange

import (
	"math"
	"math/rand"

	"brainstorm_web/pkg/canvas"
)

// 版面常數，與便利貼卡片的實際尺寸對應
const (
	gridCols     = 4
	gridCap      = 16 // 4x4 網格最多排列 16 張，超過的不移動
	spacingX     = 220.0
	spacingY     = 180.0
	cardWidth    = 200.0
	cardHeight   = 160.0
	leftMargin   = 100.0
	rightMargin  = 100.0
	topMargin    = 200.0
	scatterPad   = 150.0
	scatterBandY = 400.0 // 上下各保留一半給標題列與工具列
)

// Placement 是一張便利貼的目標位置
type Placement struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Strategy 是排列策略的名稱
type Strategy string

const (
	GridLeft   Strategy = "grid_left"
	GridCenter Strategy = "grid_center"
	GridRight  Strategy = "grid_right"
	Circle     Strategy = "circle"
	Scatter    Strategy = "scatter"
)

// Arrange 依策略名稱計算位置，未知的策略回傳 nil
func Arrange(strategy Strategy, ideas []canvas.Idea, width, height float64) []Placement {
	switch strategy {
	case GridLeft:
		return GridLeftAlign(ideas, width, height)
	case GridCenter:
		return GridCenterAlign(ideas, width, height)
	case GridRight:
		return GridRightAlign(ideas, width, height)
	case Circle:
		return CircleLayout(ideas, width, height)
	case Scatter:
		return RandomScatter(ideas, width, height)
	}
	return nil
}

// GridLeftAlign 以固定左邊距排出 4 欄網格
func GridLeftAlign(ideas []canvas.Idea, width, height float64) []Placement {
	return grid(ideas, leftMargin)
}

// GridCenterAlign 將網格總寬置中於畫布
func GridCenterAlign(ideas []canvas.Idea, width, height float64) []Placement {
	totalWidth := (gridCols-1)*spacingX + cardWidth
	return grid(ideas, (width-totalWidth)/2)
}

// GridRightAlign 以固定右邊距貼齊畫布右側
func GridRightAlign(ideas []canvas.Idea, width, height float64) []Placement {
	totalWidth := (gridCols-1)*spacingX + cardWidth
	return grid(ideas, width-totalWidth-rightMargin)
}

func grid(ideas []canvas.Idea, startX float64) []Placement {
	n := len(ideas)
	if n > gridCap {
		n = gridCap
	}
	placements := make([]Placement, 0, n)
	for i := 0; i < n; i++ {
		col := i % gridCols
		row := i / gridCols
		placements = append(placements, Placement{
			ID: ideas[i].ID,
			X:  startX + float64(col)*spacingX,
			Y:  topMargin + float64(row)*spacingY,
		})
	}
	return placements
}

// CircleLayout 將所有便利貼等距排在以畫布中心為圓心的圓上，
// 半徑為較短邊的三分之一，從正上方開始順時針排列。
// 回傳的座標是卡片左上角，卡片中心會落在圓上。
func CircleLayout(ideas []canvas.Idea, width, height float64) []Placement {
	n := len(ideas)
	if n == 0 {
		return nil
	}
	centerX := width / 2
	centerY := height / 2
	radius := math.Min(width, height) / 3
	angleStep := 2 * math.Pi / float64(n)

	placements := make([]Placement, 0, n)
	for i, idea := range ideas {
		angle := float64(i)*angleStep - math.Pi/2
		placements = append(placements, Placement{
			ID: idea.ID,
			X:  centerX + math.Cos(angle)*radius - cardWidth/2,
			Y:  centerY + math.Sin(angle)*radius - cardHeight/2,
		})
	}
	return placements
}

// RandomScatter 在畫布邊界內（扣掉邊距與卡片尺寸）為每張便利貼
// 取一個獨立的均勻隨機位置。刻意不設種子，結果不可重現。
func RandomScatter(ideas []canvas.Idea, width, height float64) []Placement {
	rangeX := math.Max(0, width-2*scatterPad-cardWidth)
	rangeY := math.Max(0, height-scatterBandY-cardHeight)

	placements := make([]Placement, 0, len(ideas))
	for _, idea := range ideas {
		placements = append(placements, Placement{
			ID: idea.ID,
			X:  scatterPad + rand.Float64()*rangeX,
			Y:  topMargin + rand.Float64()*rangeY,
		})
	}
	return placements
}
