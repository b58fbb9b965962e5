// Package infra Redis 基础设施初始化
package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"kudos-admin/internal/shared/eventbus"
	eventbusredis "kudos-admin/internal/shared/eventbus/redis"
)

// RedisInfra Redis 基础设施
//
// 持有底层连接并组合事件总线组件，对外暴露 eventbus.EventBus 接口
type RedisInfra struct {
	eventBusStore *eventbusredis.Store

	// 底层连接
	client *redis.Client
}

// NewRedisInfra 从 URL 创建 Redis 基础设施
func NewRedisInfra(redisURL string) (*RedisInfra, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Infra] Connected to %s", opts.Addr)

	return &RedisInfra{
		client:        client,
		eventBusStore: eventbusredis.NewStoreFromClient(client),
	}, nil
}

// EventBus 返回事件总线组件接口
func (r *RedisInfra) EventBus() eventbus.EventBus {
	return r.eventBusStore
}

// Client 返回底层 Redis 客户端
func (r *RedisInfra) Client() *redis.Client {
	return r.client
}

// Close 关闭 Redis 连接
func (r *RedisInfra) Close() error {
	return r.client.Close()
}

// ============================================================================
// eventbus.EventBus 接口委托实现
// ============================================================================

func (r *RedisInfra) PublishFeedEvent(ctx context.Context, event *eventbus.RecognitionEvent) error {
	return r.eventBusStore.PublishFeedEvent(ctx, event)
}

func (r *RedisInfra) PublishInboxEvent(ctx context.Context, userID string, event *eventbus.RecognitionEvent) error {
	return r.eventBusStore.PublishInboxEvent(ctx, userID, event)
}

func (r *RedisInfra) SubscribeFeed(ctx context.Context) (<-chan *eventbus.RecognitionEvent, error) {
	return r.eventBusStore.SubscribeFeed(ctx)
}

func (r *RedisInfra) SubscribeInbox(ctx context.Context, userID string) (<-chan *eventbus.RecognitionEvent, error) {
	return r.eventBusStore.SubscribeInbox(ctx, userID)
}

// 确保 RedisInfra 实现了 eventbus.EventBus 接口
var _ eventbus.EventBus = (*RedisInfra)(nil)
