package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"strategy-engine-go/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env    string        `yaml:"env" envconfig:"APP_ENV" default:"dev"`
	Broker BrokerConfig  `yaml:"broker"`
	Server ServerConfig  `yaml:"server"`
	Log    logger.Config `yaml:"log"`
}

// BrokerConfig Kafka 订阅参数。变量名与默认值沿用部署约定。
type BrokerConfig struct {
	BootstrapServers string `yaml:"bootstrapServers" envconfig:"KAFKA_BOOTSTRAP_SERVERS" default:"kafka:9092"`
	Topic            string `yaml:"topic" envconfig:"KAFKA_TICKS_TOPIC" default:"ticks"`
	GroupID          string `yaml:"groupId" envconfig:"KAFKA_GROUP_ID" default:"strategy-engine"`
}

// BrokerList splits the comma-separated bootstrap servers.
func (b BrokerConfig) BrokerList() []string {
	parts := strings.Split(b.BootstrapServers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr" envconfig:"LISTEN_ADDR" default:":7002"`
}

// LoadFromEnv builds the config from environment variables alone,
// falling back to the documented defaults. A .env file is honored when
// present; its absence is not an error.
func LoadFromEnv() (AppConfig, error) {
	var cfg AppConfig
	_ = godotenv.Load()
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process env: %w", err)
	}
	if len(cfg.Log.Outputs) == 0 {
		cfg.Log.Outputs = []string{"stdout"}
	}
	return cfg, Validate(cfg)
}

// Load reads YAML config from path over the env defaults and applies
// basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	_ = godotenv.Load()
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process env defaults: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if len(cfg.Log.Outputs) == 0 {
		cfg.Log.Outputs = []string{"stdout"}
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads the YAML file then lets explicit env vars
// win over file values.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS"); v != "" {
		cfg.Broker.BootstrapServers = v
	}
	if v := os.Getenv("KAFKA_TICKS_TOPIC"); v != "" {
		cfg.Broker.Topic = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		cfg.Broker.GroupID = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, Validate(cfg)
}
