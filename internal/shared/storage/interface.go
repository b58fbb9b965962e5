// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：repository/（SQL）、mongostore/（MongoDB）
//   - 初始化时通过依赖注入传入实现
//
// 事件总线已迁移至独立包 eventbus/。
package storage

import (
	"context"
	"time"

	"kudos-admin/internal/shared/model"
)

// ============================================================================
// 查询条件
// ============================================================================

// RecognitionQuery 认可查询过滤条件
//
// 所有字段按 AND 组合。零值字段不参与过滤。
// 除非 IncludeDeleted 为 true，软删除记录一律不出现在结果中。
type RecognitionQuery struct {
	// ViewerID 非空时应用可读性过滤：
	// visibility == public OR recipient_id == viewer OR sender_id == viewer
	ViewerID string

	// SenderID 按发送者过滤（匿名消息 sender_id 为 NULL，永远不会命中）
	SenderID string

	// RecipientID 按接收者过滤
	RecipientID string

	// Visibility 按可见性过滤
	Visibility model.Visibility

	// IncludeDeleted 包含软删除记录（仅管理审计用）
	IncludeDeleted bool

	// Limit/Offset 分页；Limit <= 0 表示使用默认上限
	Limit  int
	Offset int
}

// ============================================================================
// 分析聚合类型
// ============================================================================

// AnalyticsScope 分析聚合范围
//
// TeamID 非空时按团队成员（作为接收者）过滤；否则为组织级。
// Since/Until 为零值时不限制时间范围。
type AnalyticsScope struct {
	TeamID string
	Since  time.Time
	Until  time.Time
}

// RecognitionUpdate 认可部分更新
//
// nil 字段不修改。Keywords 仅在 Message 非 nil 时生效
//（关键词由消息正文派生，必须同步更新）。
type RecognitionUpdate struct {
	Message    *string
	Keywords   []string
	Visibility *model.Visibility
}

// KeywordCount 关键词出现次数
type KeywordCount struct {
	Keyword string `json:"keyword" bson:"_id" db:"keyword"`
	Count   int64  `json:"count" bson:"count" db:"count"`
}

// RecipientCount 接收者获得认可次数
type RecipientCount struct {
	UserID string `json:"user_id" bson:"_id" db:"user_id"`
	Count  int64  `json:"count" bson:"count" db:"count"`
}

// ============================================================================
// 持久化存储接口
// ============================================================================

// RecognitionStore 认可存储接口
type RecognitionStore interface {
	CreateRecognition(ctx context.Context, rec *model.Recognition) error
	// GetRecognition 按 ID 获取，包含软删除记录（删除语义由业务层判定）
	GetRecognition(ctx context.Context, id string) (*model.Recognition, error)
	ListRecognitions(ctx context.Context, q RecognitionQuery) ([]*model.Recognition, error)
	CountRecognitions(ctx context.Context, q RecognitionQuery) (int64, error)
	// UpdateRecognition 部分更新消息正文/关键词/可见性
	// 软删除记录不可更新，返回 ErrNotFound
	UpdateRecognition(ctx context.Context, id string, upd *RecognitionUpdate) error
	// SoftDeleteRecognition 软删除；对已删除记录重复调用返回 ErrNotFound
	SoftDeleteRecognition(ctx context.Context, id string, at time.Time) error
}

// AnalyticsStore 分析聚合存储接口
//
// 聚合只统计未删除的认可（含 private/anonymous），软删除记录一律排除。
type AnalyticsStore interface {
	TopKeywords(ctx context.Context, scope AnalyticsScope, limit int) ([]KeywordCount, error)
	TopRecipients(ctx context.Context, scope AnalyticsScope, limit int) ([]RecipientCount, error)
	CountRecognitionsInScope(ctx context.Context, scope AnalyticsScope) (int64, error)
	// CountRecognitionsByVisibility 按可见性分组统计
	CountRecognitionsByVisibility(ctx context.Context, scope AnalyticsScope) (map[model.Visibility]int64, error)
	// CountDistinctSenders 统计不同发送者数量（匿名 NULL 发送者不计入）
	CountDistinctSenders(ctx context.Context, scope AnalyticsScope) (int64, error)
	// CountDistinctRecipients 统计不同接收者数量
	CountDistinctRecipients(ctx context.Context, scope AnalyticsScope) (int64, error)
}

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListTeamMembers(ctx context.Context, teamID string) ([]*model.User, error)
}

// TeamStore 团队存储接口
type TeamStore interface {
	CreateTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id string) (*model.Team, error)
	ListTeams(ctx context.Context) ([]*model.Team, error)
}

// ============================================================================
// 组合接口
// ============================================================================

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	RecognitionStore
	AnalyticsStore
	UserStore
	TeamStore
	Close() error
}
