package broker

import (
	"context"
	"testing"
	"time"
)

func TestNewKafkaConsumerValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"no brokers", Config{Topic: "ticks", GroupID: "g"}},
		{"no topic", Config{Brokers: []string{"kafka:9092"}, GroupID: "g"}},
		{"no group", Config{Brokers: []string{"kafka:9092"}, Topic: "ticks"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewKafkaConsumer(tc.cfg); err == nil {
				t.Fatalf("expected config error")
			}
		})
	}
}

func TestPingFailsFastOnUnreachableBroker(t *testing.T) {
	c, err := NewKafkaConsumer(Config{
		Brokers: []string{"127.0.0.1:1"}, // nothing listens here
		Topic:   "ticks",
		GroupID: "strategy-engine",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err == nil {
		t.Fatal("expected ping failure against unreachable broker")
	}
}
