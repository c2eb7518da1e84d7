package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Validate ensures required fields are present and well-formed.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if len(cfg.Broker.BrokerList()) == 0 {
		return errors.New("broker.bootstrapServers is required")
	}
	if cfg.Broker.Topic == "" {
		return errors.New("broker.topic is required")
	}
	if cfg.Broker.GroupID == "" {
		return errors.New("broker.groupId is required")
	}
	if cfg.Server.ListenAddr == "" {
		return errors.New("server.listenAddr is required")
	}
	if cfg.Log.Level != "" {
		if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level invalid: %w", err)
		}
	}
	return nil
}
