// Package eventbus 事件总线 mock 实现
package eventbus

import (
	"context"
	"sync"
)

// ============================================================================
// NoOpEventBus - 空操作的 EventBus 实现（用于测试）
// ============================================================================

// NoOpEventBus 是一个不做任何操作的 EventBus 实现
type NoOpEventBus struct{}

// NewNoOpEventBus 创建 NoOpEventBus 实例
func NewNoOpEventBus() *NoOpEventBus {
	return &NoOpEventBus{}
}

// Close 关闭事件总线
func (e *NoOpEventBus) Close() error {
	return nil
}

func (e *NoOpEventBus) PublishFeedEvent(ctx context.Context, event *RecognitionEvent) error {
	return nil
}

func (e *NoOpEventBus) PublishInboxEvent(ctx context.Context, userID string, event *RecognitionEvent) error {
	return nil
}

func (e *NoOpEventBus) SubscribeFeed(ctx context.Context) (<-chan *RecognitionEvent, error) {
	ch := make(chan *RecognitionEvent)
	close(ch)
	return ch, nil
}

func (e *NoOpEventBus) SubscribeInbox(ctx context.Context, userID string) (<-chan *RecognitionEvent, error) {
	ch := make(chan *RecognitionEvent)
	close(ch)
	return ch, nil
}

// 确保 NoOpEventBus 实现了 EventBus 接口
var _ EventBus = (*NoOpEventBus)(nil)

// ============================================================================
// MemoryEventBus - 进程内 EventBus 实现（用于测试断言事件投递）
// ============================================================================

// MemoryEventBus 将发布的事件记录在内存中
//
// 不实现真正的订阅分发，测试通过 FeedEvents/InboxEvents 检查投递结果。
// FailPublish 置为 true 时所有发布返回错误，用于验证扇出失败被吞掉的行为。
type MemoryEventBus struct {
	mu          sync.Mutex
	feedEvents  []*RecognitionEvent
	inboxEvents map[string][]*RecognitionEvent

	FailPublish bool
	publishErr  error
}

// NewMemoryEventBus 创建 MemoryEventBus 实例
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{
		inboxEvents: make(map[string][]*RecognitionEvent),
	}
}

// SetPublishError 设置发布失败时返回的错误
func (e *MemoryEventBus) SetPublishError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.FailPublish = err != nil
	e.publishErr = err
}

func (e *MemoryEventBus) PublishFeedEvent(ctx context.Context, event *RecognitionEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailPublish {
		return e.publishErr
	}
	e.feedEvents = append(e.feedEvents, event)
	return nil
}

func (e *MemoryEventBus) PublishInboxEvent(ctx context.Context, userID string, event *RecognitionEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailPublish {
		return e.publishErr
	}
	e.inboxEvents[userID] = append(e.inboxEvents[userID], event)
	return nil
}

func (e *MemoryEventBus) SubscribeFeed(ctx context.Context) (<-chan *RecognitionEvent, error) {
	ch := make(chan *RecognitionEvent)
	close(ch)
	return ch, nil
}

func (e *MemoryEventBus) SubscribeInbox(ctx context.Context, userID string) (<-chan *RecognitionEvent, error) {
	ch := make(chan *RecognitionEvent)
	close(ch)
	return ch, nil
}

// FeedEvents 返回公共频道收到的事件
func (e *MemoryEventBus) FeedEvents() []*RecognitionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*RecognitionEvent, len(e.feedEvents))
	copy(out, e.feedEvents)
	return out
}

// InboxEvents 返回指定用户收件箱频道收到的事件
func (e *MemoryEventBus) InboxEvents(userID string) []*RecognitionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := e.inboxEvents[userID]
	out := make([]*RecognitionEvent, len(events))
	copy(out, events)
	return out
}

// Close 关闭事件总线
func (e *MemoryEventBus) Close() error {
	return nil
}

// 确保 MemoryEventBus 实现了 EventBus 接口
var _ EventBus = (*MemoryEventBus)(nil)
