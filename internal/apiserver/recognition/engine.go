// Package recognition 认可领域 - 访问控制与投递引擎
//
// 包结构：
//   - engine.go: Engine — create/list/get/update/softDelete 编排
//   - validator.go: 输入校验（消息、可见性、接收者）
//   - keywords.go: 关键词提取
//   - format.go: 视图格式化（匿名发送者抹除、目录信息附带）
//   - errors.go: 业务错误分类
//   - handler.go: HTTP 路由与参数解析
//   - util.go: 辅助函数
package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kudos-admin/internal/shared/eventbus"
	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/policy"
	"kudos-admin/internal/shared/storage"
	"kudos-admin/pkg/logging"
)

// defaultLimit 列表查询默认条数
const defaultLimit = 20

// maxLimit 列表查询条数上限
const maxLimit = 100

// Store 引擎依赖的存储接口
type Store interface {
	storage.RecognitionStore
	storage.UserStore
}

// Engine 认可引擎
//
// 编排校验、访问控制、关键词提取、持久化与事件扇出。
// 每次调用都是独立的短事务，引擎自身不持有可变状态，可并发使用。
type Engine struct {
	store  Store
	bus    eventbus.RecognitionEventBus
	logger *logging.Logger
}

// NewEngine 创建认可引擎
// bus 传 nil 时使用 NoOpEventBus（无 Redis 的部署模式）
func NewEngine(store Store, bus eventbus.RecognitionEventBus, logger *logging.Logger) *Engine {
	if bus == nil {
		bus = eventbus.NewNoOpEventBus()
	}
	if logger == nil {
		logger = logging.Default("recognition")
	}
	return &Engine{store: store, bus: bus, logger: logger}
}

// ============================================================================
// 创建
// ============================================================================

// CreateInput 创建认可的输入
type CreateInput struct {
	RecipientID string
	Message     string
	Visibility  model.Visibility
}

// Create 创建认可
//
// 流程：校验 → 接收者存在性检查 → 关键词提取 → 落库 → 事件扇出。
// 扇出是 best-effort：发布失败只记日志，不回滚已落库的记录，调用方
// 永远看不到扇出错误。匿名认可不落发送者 ID。
func (e *Engine) Create(ctx context.Context, senderID string, input CreateInput) (*View, error) {
	if err := ValidateMessage(input.Message); err != nil {
		return nil, err
	}
	if err := ValidateVisibilityForCreate(input.Visibility); err != nil {
		return nil, err
	}
	if err := ValidateRecipient(input.RecipientID, senderID); err != nil {
		return nil, err
	}

	recipient, err := e.store.GetUserByID(ctx, input.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}
	if recipient == nil {
		return nil, fmt.Errorf("%w: recipient does not exist", ErrValidation)
	}

	message := strings.TrimSpace(input.Message)

	// 匿名认可不记录发送者，创建后对所有人不可变
	var sender *string
	if input.Visibility != model.VisibilityAnonymous {
		sender = &senderID
	}

	now := time.Now().UTC()
	rec := &model.Recognition{
		ID:          generateID("rec"),
		SenderID:    sender,
		RecipientID: input.RecipientID,
		Message:     message,
		Visibility:  input.Visibility,
		Keywords:    ExtractKeywords(message),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.store.CreateRecognition(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist recognition: %w", err)
	}

	e.fanout(ctx, eventbus.EventRecognitionCreated, rec)

	return e.formatView(ctx, rec), nil
}

// ============================================================================
// 读取
// ============================================================================

// ListFilters 列表查询过滤条件
type ListFilters struct {
	Visibility model.Visibility
	Limit      int
	Offset     int
}

// List 列出当前查看者可读的认可，按创建时间倒序
// 可读性过滤在存储层执行：public、自己接收的、自己发出的
func (e *Engine) List(ctx context.Context, viewerID string, filters ListFilters) ([]*View, error) {
	if filters.Visibility != "" {
		if err := ValidateVisibilityForCreate(filters.Visibility); err != nil {
			return nil, err
		}
	}
	recs, err := e.store.ListRecognitions(ctx, storage.RecognitionQuery{
		ViewerID:   viewerID,
		Visibility: filters.Visibility,
		Limit:      clampLimit(filters.Limit),
		Offset:     filters.Offset,
	})
	if err != nil {
		return nil, err
	}
	return e.formatViews(ctx, recs), nil
}

// 查询方向
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// ListMine 列出当前查看者发出或收到的认可
// sent 方向基于 sender_id，匿名发出的认可不会出现（发送者身份未落库）
func (e *Engine) ListMine(ctx context.Context, viewerID, direction string, limit int) ([]*View, error) {
	q := storage.RecognitionQuery{Limit: clampLimit(limit)}
	switch direction {
	case DirectionSent:
		q.SenderID = viewerID
	case DirectionReceived:
		q.RecipientID = viewerID
	default:
		return nil, fmt.Errorf("%w: direction must be %q or %q", ErrValidation, DirectionSent, DirectionReceived)
	}

	recs, err := e.store.ListRecognitions(ctx, q)
	if err != nil {
		return nil, err
	}
	return e.formatViews(ctx, recs), nil
}

// GetByID 按 ID 获取认可
//
// 记录不存在、已软删除、对查看者不可读三种情况一律返回 ErrNotFound，
// 避免向无权限调用方泄露记录是否存在。
func (e *Engine) GetByID(ctx context.Context, id, viewerID string) (*View, error) {
	rec, err := e.fetchActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.IsReadable(rec, viewerID) {
		return nil, ErrNotFound
	}
	return e.formatView(ctx, rec), nil
}

// ============================================================================
// 更新与软删除
// ============================================================================

// UpdateInput 更新认可的输入，nil 字段不修改
type UpdateInput struct {
	Message    *string
	Visibility *model.Visibility
}

// Update 更新认可的消息正文和/或可见性
//
// 仅原始发送者可更新（匿名认可创建后对所有人不可变）。
// 消息变化时重算关键词；至少需要提供一个字段。
func (e *Engine) Update(ctx context.Context, viewerID, id string, input UpdateInput) (*View, error) {
	if input.Message == nil && input.Visibility == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	rec, err := e.fetchActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(rec, viewerID) {
		return nil, fmt.Errorf("%w: only the sender can modify a recognition", ErrPermission)
	}

	upd := &storage.RecognitionUpdate{}
	if input.Message != nil {
		if err := ValidateMessage(*input.Message); err != nil {
			return nil, err
		}
		message := strings.TrimSpace(*input.Message)
		upd.Message = &message
		// 关键词由消息确定性导出，只在消息变化时重算
		upd.Keywords = rec.Keywords
		if message != rec.Message {
			upd.Keywords = ExtractKeywords(message)
		}
	}
	if input.Visibility != nil {
		if err := ValidateVisibilityForCreate(*input.Visibility); err != nil {
			return nil, err
		}
		// 非匿名创建的认可不能转为匿名——发送者身份已落库
		if *input.Visibility == model.VisibilityAnonymous {
			return nil, fmt.Errorf("%w: cannot change visibility to anonymous", ErrValidation)
		}
		upd.Visibility = input.Visibility
	}

	if err := e.store.UpdateRecognition(ctx, id, upd); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updated, err := e.store.GetRecognition(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	e.fanout(ctx, eventbus.EventRecognitionUpdated, updated)

	return e.formatView(ctx, updated), nil
}

// SoftDelete 软删除认可
//
// 仅原始发送者可删除。删除不可逆，重复删除返回 ErrNotFound
//（对调用方而言与记录不存在无差别）。
func (e *Engine) SoftDelete(ctx context.Context, viewerID, id string) error {
	rec, err := e.fetchActive(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanMutate(rec, viewerID) {
		return fmt.Errorf("%w: only the sender can delete a recognition", ErrPermission)
	}

	if err := e.store.SoftDeleteRecognition(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	// 删除事件只携带标识，不重播内容
	e.publish(ctx, &eventbus.RecognitionEvent{
		ID:            generateID("evt"),
		Type:          eventbus.EventRecognitionDeleted,
		RecognitionID: rec.ID,
		RecipientID:   rec.RecipientID,
		Visibility:    string(rec.Visibility),
		Timestamp:     time.Now().UTC(),
	}, rec.Visibility == model.VisibilityPublic)

	return nil
}

// ============================================================================
// 内部辅助
// ============================================================================

// fetchActive 获取未删除的认可；不存在或已删除返回 ErrNotFound
func (e *Engine) fetchActive(ctx context.Context, id string) (*model.Recognition, error) {
	rec, err := e.store.GetRecognition(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Deleted() {
		return nil, ErrNotFound
	}
	return rec, nil
}

// fanout 将记录的当前状态扇出为事件
func (e *Engine) fanout(ctx context.Context, eventType string, rec *model.Recognition) {
	e.publish(ctx, &eventbus.RecognitionEvent{
		ID:            generateID("evt"),
		Type:          eventType,
		RecognitionID: rec.ID,
		SenderID:      rec.SenderID,
		RecipientID:   rec.RecipientID,
		Visibility:    string(rec.Visibility),
		Message:       rec.Message,
		Keywords:      rec.Keywords,
		Timestamp:     time.Now().UTC(),
	}, rec.Visibility == model.VisibilityPublic)
}

// publish 发布事件：收件箱频道必发，public 额外进公共广播频道
// 发布失败只记日志，绝不向上传播
func (e *Engine) publish(ctx context.Context, event *eventbus.RecognitionEvent, broadcast bool) {
	if err := e.bus.PublishInboxEvent(ctx, event.RecipientID, event); err != nil {
		e.logger.FanoutLog(eventbus.InboxChannel(event.RecipientID), event.RecognitionID, err)
	}
	if broadcast {
		if err := e.bus.PublishFeedEvent(ctx, event); err != nil {
			e.logger.FanoutLog(eventbus.ChannelPublicFeed, event.RecognitionID, err)
		}
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
