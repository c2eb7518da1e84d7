// Package broker wraps the Kafka subscription the consumption loop
// drains. Offset tracking, partitioning and failover stay on the
// broker side; this package only pulls payloads.
package broker

import "context"

// Consumer 消息消费接口。engine 只依赖这三个方法，
// 测试里用内存实现替换。
type Consumer interface {
	// Ping verifies the broker is reachable at all. Called once while
	// the loop is starting; a failure is fatal for the loop.
	Ping(ctx context.Context) error
	// Fetch blocks until the next payload, a consume error, or ctx
	// cancellation. In group mode the offset commits automatically.
	Fetch(ctx context.Context) ([]byte, error)
	// Close releases the subscription. Safe to call once on every
	// exit path.
	Close() error
}
