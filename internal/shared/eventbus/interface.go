// Package eventbus 事件总线抽象接口
//
// 提供认可事件的发布/订阅能力，当前由 Redis Pub/Sub 实现。
// 投递语义为 at-most-once：没有在线订阅者时事件直接丢弃，
// 不做持久化与重放，历史数据一律走存储层查询。
package eventbus

import (
	"context"
)

// ============================================================================
// 事件总线接口定义
// ============================================================================

// RecognitionEventBus 认可事件总线接口
type RecognitionEventBus interface {
	// PublishFeedEvent 向公共广播频道发布事件
	PublishFeedEvent(ctx context.Context, event *RecognitionEvent) error

	// PublishInboxEvent 向指定用户的收件箱频道发布事件
	PublishInboxEvent(ctx context.Context, userID string, event *RecognitionEvent) error

	// SubscribeFeed 订阅公共广播频道，ctx 取消后通道关闭
	SubscribeFeed(ctx context.Context) (<-chan *RecognitionEvent, error)

	// SubscribeInbox 订阅指定用户的收件箱频道，ctx 取消后通道关闭
	SubscribeInbox(ctx context.Context, userID string) (<-chan *RecognitionEvent, error)
}

// ============================================================================
// 组合接口
// ============================================================================

// EventBus 事件总线组合接口
type EventBus interface {
	RecognitionEventBus
	Close() error
}
