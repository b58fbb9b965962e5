// Package redis 认可事件的 Pub/Sub 操作
//
// 使用 Redis Pub/Sub 而非 Streams：通知语义为 at-most-once，
// 没有在线订阅者时事件直接丢弃，不持久化、不重放。
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"kudos-admin/internal/shared/eventbus"
)

// PublishFeedEvent 向公共广播频道发布事件
func (s *Store) PublishFeedEvent(ctx context.Context, event *eventbus.RecognitionEvent) error {
	return s.publish(ctx, eventbus.ChannelPublicFeed, event)
}

// PublishInboxEvent 向指定用户的收件箱频道发布事件
func (s *Store) PublishInboxEvent(ctx context.Context, userID string, event *eventbus.RecognitionEvent) error {
	return s.publish(ctx, eventbus.InboxChannel(userID), event)
}

func (s *Store) publish(ctx context.Context, channel string, event *eventbus.RecognitionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := s.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// SubscribeFeed 订阅公共广播频道
func (s *Store) SubscribeFeed(ctx context.Context) (<-chan *eventbus.RecognitionEvent, error) {
	return s.subscribe(ctx, eventbus.ChannelPublicFeed)
}

// SubscribeInbox 订阅指定用户的收件箱频道
func (s *Store) SubscribeInbox(ctx context.Context, userID string) (<-chan *eventbus.RecognitionEvent, error) {
	return s.subscribe(ctx, eventbus.InboxChannel(userID))
}

func (s *Store) subscribe(ctx context.Context, channel string) (<-chan *eventbus.RecognitionEvent, error) {
	sub := s.client.Subscribe(ctx, channel)

	// 等待订阅确认，失败时立即返回错误而不是静默丢事件
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe %s: %w", channel, err)
	}

	ch := make(chan *eventbus.RecognitionEvent, 100)

	go func() {
		defer close(ch)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				event := &eventbus.RecognitionEvent{}
				if err := json.Unmarshal([]byte(msg.Payload), event); err != nil {
					log.Printf("[Redis/EventBus] Malformed event on %s: %v", channel, err)
					continue
				}
				select {
				case ch <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// 确保 Store 实现了 eventbus.EventBus 接口
var _ eventbus.EventBus = (*Store)(nil)
