package container

import (
	"context"
	"fmt"
	"net/http"

	"strategy-engine-go/broker"
	"strategy-engine-go/config"
	"strategy-engine-go/infrastructure/logger"
	"strategy-engine-go/internal/engine"
	"strategy-engine-go/monitor"
	"strategy-engine-go/server"
	"strategy-engine-go/strategy"
)

// Container 依赖注入容器，管理所有组件的生命周期
type Container struct {
	// 配置
	cfg     *config.AppConfig
	cfgPath string

	// 基础设施
	logger  *logger.Logger
	monitor *monitor.Monitor

	// 核心服务
	state    *strategy.State
	consumer broker.Consumer
	engine   *engine.Engine
	handler  *server.Handler

	// HTTP服务器
	httpServer *http.Server

	// 配置热更新
	reloader *config.Reloader

	// 生命周期管理
	lifecycle *LifecycleManager
}

// New 创建新的Container实例。cfgPath 为空时只用环境变量。
func New(cfgPath string) (*Container, error) {
	var (
		cfg config.AppConfig
		err error
	)
	if cfgPath == "" {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.LoadWithEnvOverrides(cfgPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	return &Container{
		cfg:       &cfg,
		cfgPath:   cfgPath,
		lifecycle: NewLifecycleManager(),
	}, nil
}

// Config 返回已加载的配置
func (c *Container) Config() config.AppConfig {
	return *c.cfg
}

// Engine 返回消费循环（测试与诊断用）
func (c *Container) Engine() *engine.Engine {
	return c.engine
}

// Build 构建所有组件
func (c *Container) Build() error {
	if err := c.buildInfrastructure(); err != nil {
		return fmt.Errorf("build infrastructure failed: %w", err)
	}

	if err := c.buildBroker(); err != nil {
		return fmt.Errorf("build broker failed: %w", err)
	}

	c.buildCoreServices()
	c.registerLifecycleComponents()

	if c.cfgPath != "" {
		if err := c.buildReloader(); err != nil {
			return fmt.Errorf("build reloader failed: %w", err)
		}
	}

	c.logger.Info("container built successfully")
	return nil
}

func (c *Container) buildInfrastructure() error {
	var err error
	c.logger, err = logger.New(c.cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger failed: %w", err)
	}

	c.monitor = monitor.New(monitor.DefaultConfig())

	c.logger.Info("infrastructure built")
	return nil
}

func (c *Container) buildBroker() error {
	consumer, err := broker.NewKafkaConsumer(broker.Config{
		Brokers: c.cfg.Broker.BrokerList(),
		Topic:   c.cfg.Broker.Topic,
		GroupID: c.cfg.Broker.GroupID,
	})
	if err != nil {
		return fmt.Errorf("create kafka consumer failed: %w", err)
	}
	c.consumer = consumer

	c.logger.Info("broker built")
	return nil
}

func (c *Container) buildCoreServices() {
	c.state = strategy.NewState()
	c.engine = engine.New(c.consumer, c.state, c.monitor, c.logger)
	c.handler = server.New(c.state, c.monitor)

	c.logger.Info("core services built")
}

func (c *Container) buildReloader() error {
	reloader, err := config.NewReloader(c.cfgPath, config.DefaultReloadConfig(),
		func(next config.AppConfig) {
			// 只有日志级别允许在线生效，broker参数需要重启
			if next.Log.Level != c.cfg.Log.Level {
				if err := c.logger.SetLevel(next.Log.Level); err != nil {
					c.logger.LogError(err, map[string]interface{}{"action": "reload_log_level"})
					return
				}
				c.cfg.Log.Level = next.Log.Level
				c.logger.Info("log level reloaded: " + next.Log.Level)
			}
		},
		func(err error) {
			c.logger.LogError(err, map[string]interface{}{"action": "config_reload"})
		},
	)
	if err != nil {
		return err
	}
	c.reloader = reloader
	return nil
}

func (c *Container) registerLifecycleComponents() {
	c.lifecycle.Register(&httpServerComponent{
		name:    "serving_surface",
		handler: c.handler.Routes(),
		addr:    c.cfg.Server.ListenAddr,
		logger:  c.logger,
		server:  &c.httpServer,
	})
	c.lifecycle.Register(&engineComponent{
		engine: c.engine,
		logger: c.logger,
	})
}

// Start 启动所有组件。HTTP绑定失败会在这里直接报错，
// 由调用方以非零码退出；消费循环的启动失败只会停掉循环本身。
func (c *Container) Start(ctx context.Context) error {
	c.logger.Info("starting container...")

	if err := c.lifecycle.StartAll(ctx); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}

	if c.reloader != nil {
		if err := c.reloader.Start(ctx); err != nil {
			c.logger.LogError(err, map[string]interface{}{"action": "start_reloader"})
		}
	}

	c.logger.Info("container started")
	return nil
}

// Stop 逆序停止所有组件
func (c *Container) Stop() error {
	c.logger.Info("stopping container...")

	if c.reloader != nil {
		if err := c.reloader.Stop(); err != nil {
			c.logger.LogError(err, map[string]interface{}{"action": "stop_reloader"})
		}
	}

	err := c.lifecycle.StopAll()
	if err != nil {
		c.logger.LogError(err, map[string]interface{}{"action": "stop"})
	}

	if c.logger != nil {
		_ = c.logger.Close()
	}
	return err
}

// HealthCheck 检查所有组件健康状态
func (c *Container) HealthCheck() error {
	return c.lifecycle.CheckHealth()
}
