package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Config Kafka订阅配置。GroupID 固定每个部署一个，
// 没有已提交 offset 时从最早保留的消息开始。
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaConsumer Consumer 的 kafka-go 实现。
type KafkaConsumer struct {
	cfg    Config
	reader *kafka.Reader
}

// NewKafkaConsumer builds the group reader. The connection itself is
// lazy; call Ping to surface startup failures.
func NewKafkaConsumer(cfg Config) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer: brokers required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka consumer: topic required")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer: group id required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		MaxWait:     500 * time.Millisecond,
	})
	return &KafkaConsumer{cfg: cfg, reader: reader}, nil
}

// Ping dials the first bootstrap broker to confirm reachability.
func (c *KafkaConsumer) Ping(ctx context.Context) error {
	dialer := &kafka.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker %s: %w", c.cfg.Brokers[0], err)
	}
	return conn.Close()
}

// Fetch 拉取下一条消息。ReadMessage 在 group 模式下自动提交 offset，
// ctx 取消时立即带错误返回。
func (c *KafkaConsumer) Fetch(ctx context.Context) ([]byte, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	return msg.Value, nil
}

// Close 释放订阅。
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
