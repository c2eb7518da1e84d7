// Package engine runs the consumption loop: drain the tick topic,
// advance the strategy state, evaluate the signal rule, publish
// metrics. Per-message failures never terminate the loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"strategy-engine-go/broker"
	"strategy-engine-go/infrastructure/logger"
	"strategy-engine-go/monitor"
	"strategy-engine-go/strategy"
	"strategy-engine-go/tick"
)

// State 循环状态
type State int

const (
	// StateStarting 正在建立订阅
	StateStarting State = iota
	// StateRunning 正常消费
	StateRunning
	// StateDraining 收到取消信号，准备退出
	StateDraining
	// StateStopped 终态，订阅已释放
	StateStopped
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateDraining:
		return "DRAINING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Engine 消费循环。单个后台任务，内部无并行；
// strategy.State 只由它写入。
type Engine struct {
	consumer broker.Consumer
	strat    *strategy.State
	mon      *monitor.Monitor
	logger   *logger.Logger
	now      func() time.Time

	mu    sync.RWMutex
	state State
}

// New 创建消费循环
func New(consumer broker.Consumer, strat *strategy.State, mon *monitor.Monitor, log *logger.Logger) *Engine {
	return &Engine{
		consumer: consumer,
		strat:    strat,
		mon:      mon,
		logger:   log,
		now:      time.Now,
		state:    StateStarting,
	}
}

// State 当前循环状态
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	prev := e.state
	e.state = s
	e.mu.Unlock()
	if prev != s {
		e.logger.Info("engine_state",
			zap.String("from", prev.String()),
			zap.String("to", s.String()),
		)
	}
}

// Run drives the loop until ctx is canceled. It returns nil on orderly
// shutdown and the startup error when the subscription could not be
// established — in that case the loop never enters Running and the
// caller keeps serving health/metrics with default state.
func (e *Engine) Run(ctx context.Context) error {
	// 订阅句柄在任何退出路径上都要释放
	defer e.setState(StateStopped)
	defer func() {
		if err := e.consumer.Close(); err != nil {
			e.logger.LogError(err, map[string]interface{}{"stage": "close"})
		}
	}()

	if err := e.consumer.Ping(ctx); err != nil {
		e.mon.RecordError()
		e.logger.LogError(err, map[string]interface{}{"stage": "starting"})
		return fmt.Errorf("establish subscription: %w", err)
	}
	e.setState(StateRunning)

	for {
		// 每轮消费前检查取消信号
		select {
		case <-ctx.Done():
			e.setState(StateDraining)
			return nil
		default:
		}

		payload, err := e.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				e.setState(StateDraining)
				return nil
			}
			// broker瞬时错误：计数、记录、继续
			e.mon.RecordError()
			e.logger.LogError(err, map[string]interface{}{"stage": "consume"})
			continue
		}
		e.process(payload)
	}
}

// process 处理单条消息：失败即跳过并计数，不重试。
func (e *Engine) process(payload []byte) {
	tk, err := tick.Decode(payload)
	if err != nil {
		e.mon.RecordError()
		e.logger.LogError(err, map[string]interface{}{"stage": "decode"})
		return
	}

	e.mon.RecordTick()
	now := e.now()
	e.strat.Apply(tk, now)
	snap := e.strat.Snapshot()

	e.mon.UpdateLastPrice(snap.LastPrice)
	e.mon.UpdateTickAge(e.strat.TickAgeSeconds(e.now()))
	e.logger.LogTick(snap.LastSymbol, snap.LastPrice, snap.LastSource)

	if sig := strategy.Evaluate(snap.PreviousPrice, snap.LastPrice); sig == strategy.SignalBuy {
		e.mon.RecordSignal()
		e.logger.LogSignal(sig.String(), snap.LastSymbol, snap.PreviousPrice, snap.LastPrice)
	}
}
