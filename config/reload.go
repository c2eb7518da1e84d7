package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadConfig 热更新配置
type ReloadConfig struct {
	Enabled      bool          // 是否启用热更新
	CooldownTime time.Duration // 冷却时间，避免频繁更新
}

// DefaultReloadConfig 默认热更新配置
func DefaultReloadConfig() ReloadConfig {
	return ReloadConfig{
		Enabled:      true,
		CooldownTime: 2 * time.Second,
	}
}

// Reloader watches the config file and re-delivers a freshly parsed
// AppConfig on change. Only runtime-adjustable fields (log level) are
// meant to be applied; broker settings need a restart.
type Reloader struct {
	config     ReloadConfig
	configPath string
	watcher    *fsnotify.Watcher

	mu         sync.Mutex
	lastReload time.Time

	onUpdate func(AppConfig)
	onError  func(error)

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewReloader 创建热更新器
func NewReloader(configPath string, cfg ReloadConfig, onUpdate func(AppConfig), onError func(error)) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Reloader{
		config:     cfg,
		configPath: configPath,
		watcher:    watcher,
		onUpdate:   onUpdate,
		onError:    onError,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}, nil
}

// Start 启动热更新监听
func (r *Reloader) Start(ctx context.Context) error {
	if !r.config.Enabled {
		return nil
	}
	if err := r.watcher.Add(r.configPath); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}
	go r.watch(ctx)
	return nil
}

// Stop 停止热更新
func (r *Reloader) Stop() error {
	if !r.config.Enabled {
		if r.watcher != nil {
			return r.watcher.Close()
		}
		return nil
	}

	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}

	select {
	case <-r.doneChan:
	case <-time.After(1 * time.Second):
		// watch goroutine可能没有启动
	}

	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

// watch 监听文件变化
func (r *Reloader) watch(ctx context.Context) {
	defer close(r.doneChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				r.handleChange()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.reportError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

// handleChange 处理配置变化
func (r *Reloader) handleChange() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if time.Since(r.lastReload) < r.config.CooldownTime {
		return
	}

	cfg, err := LoadWithEnvOverrides(r.configPath)
	if err != nil {
		// 保留旧配置，坏文件只报告不应用
		r.reportError(fmt.Errorf("reload config: %w", err))
		return
	}
	if r.onUpdate != nil {
		r.onUpdate(cfg)
	}
	r.lastReload = time.Now()
}

func (r *Reloader) reportError(err error) {
	if r.onError != nil {
		r.onError(err)
	}
}

// LastReloadTime 获取最后重载时间
func (r *Reloader) LastReloadTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastReload
}
