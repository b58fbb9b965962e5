package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/storage"
)

// analyticsConditions 构建分析聚合的 WHERE 条件
// 聚合统计所有未删除的认可，软删除记录一律排除
func analyticsConditions(scope storage.AnalyticsScope) ([]string, []interface{}) {
	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}
	next := func() int { return len(args) + 1 }

	if scope.TeamID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"recipient_id IN (SELECT id FROM users WHERE team_id = $%d)", next()))
		args = append(args, scope.TeamID)
	}
	if !scope.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", next()))
		args = append(args, scope.Since)
	}
	if !scope.Until.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", next()))
		args = append(args, scope.Until)
	}
	return conditions, args
}

// TopKeywords 统计出现频率最高的关键词
//
// 关键词列为 JSON 数组文本，SQLite 与 PostgreSQL 的 JSON 展开语法不兼容，
// 统一在 Go 侧展开计数，保持 repository 层数据库无关。
func (r *Store) TopKeywords(ctx context.Context, scope storage.AnalyticsScope, limit int) ([]storage.KeywordCount, error) {
	conditions, args := analyticsConditions(scope)
	query := `SELECT keywords FROM recognitions WHERE ` + strings.Join(conditions, " AND ")

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		keywords, err := unmarshalKeywords(raw)
		if err != nil {
			return nil, err
		}
		for _, kw := range keywords {
			counts[kw]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]storage.KeywordCount, 0, len(counts))
	for kw, c := range counts {
		result = append(result, storage.KeywordCount{Keyword: kw, Count: c})
	}
	// 按次数倒序，同次数按字典序保证结果稳定
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Keyword < result[j].Keyword
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// TopRecipients 统计获得认可最多的接收者
func (r *Store) TopRecipients(ctx context.Context, scope storage.AnalyticsScope, limit int) ([]storage.RecipientCount, error) {
	conditions, args := analyticsConditions(scope)
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `SELECT recipient_id, COUNT(*) AS cnt FROM recognitions WHERE ` +
		strings.Join(conditions, " AND ") +
		fmt.Sprintf(` GROUP BY recipient_id ORDER BY cnt DESC, recipient_id ASC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []storage.RecipientCount{}
	for rows.Next() {
		var rc storage.RecipientCount
		if err := rows.Scan(&rc.UserID, &rc.Count); err != nil {
			return nil, err
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}

// CountRecognitionsInScope 统计范围内的认可总数
func (r *Store) CountRecognitionsInScope(ctx context.Context, scope storage.AnalyticsScope) (int64, error) {
	conditions, args := analyticsConditions(scope)
	query := `SELECT COUNT(*) FROM recognitions WHERE ` + strings.Join(conditions, " AND ")

	var count int64
	err := r.db.QueryRowContext(ctx, r.rebind(query), args...).Scan(&count)
	return count, err
}

// CountRecognitionsByVisibility 按可见性分组统计
func (r *Store) CountRecognitionsByVisibility(ctx context.Context, scope storage.AnalyticsScope) (map[model.Visibility]int64, error) {
	conditions, args := analyticsConditions(scope)
	query := `SELECT visibility, COUNT(*) FROM recognitions WHERE ` +
		strings.Join(conditions, " AND ") + ` GROUP BY visibility`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.Visibility]int64{}
	for rows.Next() {
		var v model.Visibility
		var c int64
		if err := rows.Scan(&v, &c); err != nil {
			return nil, err
		}
		counts[v] = c
	}
	return counts, rows.Err()
}

// CountDistinctSenders 统计不同发送者数量
// COUNT(DISTINCT sender_id) 不计 NULL，匿名发送者自动排除
func (r *Store) CountDistinctSenders(ctx context.Context, scope storage.AnalyticsScope) (int64, error) {
	return r.countDistinct(ctx, scope, "sender_id")
}

// CountDistinctRecipients 统计不同接收者数量
func (r *Store) CountDistinctRecipients(ctx context.Context, scope storage.AnalyticsScope) (int64, error) {
	return r.countDistinct(ctx, scope, "recipient_id")
}

func (r *Store) countDistinct(ctx context.Context, scope storage.AnalyticsScope, column string) (int64, error) {
	conditions, args := analyticsConditions(scope)
	query := `SELECT COUNT(DISTINCT ` + column + `) FROM recognitions WHERE ` +
		strings.Join(conditions, " AND ")

	var count int64
	err := r.db.QueryRowContext(ctx, r.rebind(query), args...).Scan(&count)
	return count, err
}
