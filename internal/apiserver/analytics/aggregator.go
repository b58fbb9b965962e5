// Package analytics 分析领域 - 角色门控的聚合统计
package analytics

import (
	"context"
	"errors"
	"fmt"

	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/policy"
	"kudos-admin/internal/shared/storage"
	"kudos-admin/pkg/logging"
)

// 聚合返回的关键词数量
const (
	teamTopKeywords = 5
	orgTopKeywords  = 10
	topRecipients   = 5
)

var (
	// ErrPermission 角色不满足分析访问要求
	ErrPermission = errors.New("permission denied")

	// ErrNotFound 团队不存在
	ErrNotFound = errors.New("team not found")
)

// fallbackKeywords 关键词聚合失败时的兜底列表
// 分析中的关键词是非关键字段，聚合失败降级返回固定列表而不是让整个调用失败
var fallbackKeywords = []storage.KeywordCount{
	{Keyword: "teamwork"},
	{Keyword: "leadership"},
	{Keyword: "collaboration"},
	{Keyword: "innovation"},
	{Keyword: "excellence"},
}

// Store 聚合器依赖的存储接口
type Store interface {
	storage.AnalyticsStore
	storage.TeamStore
}

// Aggregator 分析聚合器
type Aggregator struct {
	store  Store
	logger *logging.Logger
}

// NewAggregator 创建分析聚合器
func NewAggregator(store Store, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Default("analytics")
	}
	return &Aggregator{store: store, logger: logger}
}

// ============================================================================
// 结果类型
// ============================================================================

// TeamStats 团队统计结果
type TeamStats struct {
	TeamID        string                     `json:"team_id"`
	TeamName      string                     `json:"team_name"`
	Total         int64                      `json:"total"`
	ByVisibility  map[model.Visibility]int64 `json:"by_visibility"`
	TopKeywords   []storage.KeywordCount     `json:"top_keywords"`
	TopRecipients []storage.RecipientCount   `json:"top_recipients"`
}

// OrganizationStats 组织级统计结果
type OrganizationStats struct {
	Total              int64                      `json:"total"`
	ByVisibility       map[model.Visibility]int64 `json:"by_visibility"`
	DistinctSenders    int64                      `json:"distinct_senders"`
	DistinctRecipients int64                      `json:"distinct_recipients"`
	TopKeywords        []storage.KeywordCount     `json:"top_keywords"`
}

// ============================================================================
// 聚合操作
// ============================================================================

// TeamStats 团队级统计：按可见性分组的计数 + 高频关键词 + 高频接收者
// 范围为团队成员作为接收者的未删除认可；需要 manager 及以上角色
func (a *Aggregator) TeamStats(ctx context.Context, teamID string, role model.UserRole) (*TeamStats, error) {
	if !policy.CanAccessTeamAnalytics(role) {
		return nil, fmt.Errorf("%w: team analytics requires manager role", ErrPermission)
	}

	team, err := a.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrNotFound
	}

	scope := storage.AnalyticsScope{TeamID: teamID}

	total, err := a.store.CountRecognitionsInScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	byVisibility, err := a.store.CountRecognitionsByVisibility(ctx, scope)
	if err != nil {
		return nil, err
	}
	recipients, err := a.store.TopRecipients(ctx, scope, topRecipients)
	if err != nil {
		return nil, err
	}

	return &TeamStats{
		TeamID:        team.ID,
		TeamName:      team.Name,
		Total:         total,
		ByVisibility:  byVisibility,
		TopKeywords:   a.topKeywords(ctx, scope, teamTopKeywords),
		TopRecipients: recipients,
	}, nil
}

// OrganizationStats 组织级统计；需要 hr 及以上角色
func (a *Aggregator) OrganizationStats(ctx context.Context, role model.UserRole) (*OrganizationStats, error) {
	if !policy.CanAccessOrganizationAnalytics(role) {
		return nil, fmt.Errorf("%w: organization analytics requires hr role", ErrPermission)
	}

	scope := storage.AnalyticsScope{}

	total, err := a.store.CountRecognitionsInScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	byVisibility, err := a.store.CountRecognitionsByVisibility(ctx, scope)
	if err != nil {
		return nil, err
	}
	senders, err := a.store.CountDistinctSenders(ctx, scope)
	if err != nil {
		return nil, err
	}
	recipients, err := a.store.CountDistinctRecipients(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &OrganizationStats{
		Total:              total,
		ByVisibility:       byVisibility,
		DistinctSenders:    senders,
		DistinctRecipients: recipients,
		TopKeywords:        a.topKeywords(ctx, scope, orgTopKeywords),
	}, nil
}

// topKeywords 关键词聚合，失败时降级为固定兜底列表
func (a *Aggregator) topKeywords(ctx context.Context, scope storage.AnalyticsScope, limit int) []storage.KeywordCount {
	keywords, err := a.store.TopKeywords(ctx, scope, limit)
	if err != nil {
		a.logger.WithError(err).Warn("Keyword aggregation failed, using fallback list")
		return fallbackKeywords
	}
	return keywords
}
