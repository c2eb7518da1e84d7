// Package strategy holds the rolling strategy state and the threshold
// signal rule driven by the consumption loop.
package strategy

import (
	"sync"
	"time"

	"strategy-engine-go/tick"
)

// State 维护最近两次观察到的价格与来源信息。
// 单写多读：只有消费循环调用 Apply，快照可以并发读取。
type State struct {
	mu sync.RWMutex

	lastPrice     float64
	previousPrice float64
	lastSymbol    string
	lastSource    string
	lastTick      time.Time
}

// View is an immutable copy of the state for readers (health reporter,
// metrics refresh). LastTick is zero before the first applied tick.
type View struct {
	LastPrice     float64
	PreviousPrice float64
	LastSymbol    string
	LastSource    string
	LastTick      time.Time
}

func NewState() *State {
	return &State{}
}

// Apply 原子地推进一代状态：lastPrice 滚入 previousPrice，
// 其余字段取自新 tick，时间戳用消费时的墙钟时间。
func (s *State) Apply(t tick.Tick, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previousPrice = s.lastPrice
	s.lastPrice = t.Price
	s.lastSymbol = t.Symbol
	s.lastSource = t.Source
	s.lastTick = now
}

// Snapshot 返回当前状态的一致拷贝。
func (s *State) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		LastPrice:     s.lastPrice,
		PreviousPrice: s.previousPrice,
		LastSymbol:    s.lastSymbol,
		LastSource:    s.lastSource,
		LastTick:      s.lastTick,
	}
}

// TickAgeSeconds 距上一次成功 tick 的秒数；尚未收到 tick 时为 0。
func (s *State) TickAgeSeconds(now time.Time) float64 {
	s.mu.RLock()
	last := s.lastTick
	s.mu.RUnlock()
	if last.IsZero() {
		return 0
	}
	age := now.Sub(last).Seconds()
	if age < 0 {
		return 0
	}
	return age
}
