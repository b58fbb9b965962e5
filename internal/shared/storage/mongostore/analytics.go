package mongostore

import (
	"context"

	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// analyticsMatch 构建分析聚合的 $match 条件
// 聚合统计所有未删除的认可，软删除记录一律排除
func (s *Store) analyticsMatch(ctx context.Context, scope storage.AnalyticsScope) (bson.D, error) {
	match := bson.D{
		{Key: "deleted_at", Value: nil},
	}

	if scope.TeamID != "" {
		// MongoDB 没有跨 collection 子查询，先取出团队成员 ID 再用 $in
		members, err := s.ListTeamMembers(ctx, scope.TeamID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		match = append(match, bson.E{Key: "recipient_id", Value: bson.D{{Key: "$in", Value: ids}}})
	}

	created := bson.D{}
	if !scope.Since.IsZero() {
		created = append(created, bson.E{Key: "$gte", Value: scope.Since})
	}
	if !scope.Until.IsZero() {
		created = append(created, bson.E{Key: "$lte", Value: scope.Until})
	}
	if len(created) > 0 {
		match = append(match, bson.E{Key: "created_at", Value: created})
	}

	return match, nil
}

// TopKeywords 统计出现频率最高的关键词
func (s *Store) TopKeywords(ctx context.Context, scope storage.AnalyticsScope, limit int) ([]storage.KeywordCount, error) {
	match, err := s.analyticsMatch(ctx, scope)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	pipeline := []bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$keywords"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$keywords"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		// 按次数倒序，同次数按字典序保证结果稳定
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.col(ColRecognitions).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	results := []storage.KeywordCount{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// TopRecipients 统计获得认可最多的接收者
func (s *Store) TopRecipients(ctx context.Context, scope storage.AnalyticsScope, limit int) ([]storage.RecipientCount, error) {
	match, err := s.analyticsMatch(ctx, scope)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	pipeline := []bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$recipient_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.col(ColRecognitions).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	results := []storage.RecipientCount{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CountRecognitionsInScope 统计范围内的认可总数
func (s *Store) CountRecognitionsInScope(ctx context.Context, scope storage.AnalyticsScope) (int64, error) {
	match, err := s.analyticsMatch(ctx, scope)
	if err != nil {
		return 0, err
	}
	count, err := s.col(ColRecognitions).CountDocuments(ctx, match)
	return count, wrapError(err)
}

// CountRecognitionsByVisibility 按可见性分组统计
func (s *Store) CountRecognitionsByVisibility(ctx context.Context, scope storage.AnalyticsScope) (map[model.Visibility]int64, error) {
	match, err := s.analyticsMatch(ctx, scope)
	if err != nil {
		return nil, err
	}

	pipeline := []bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$visibility"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := s.col(ColRecognitions).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Visibility model.Visibility `bson:"_id"`
		Count      int64            `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := map[model.Visibility]int64{}
	for _, row := range rows {
		counts[row.Visibility] = row.Count
	}
	return counts, nil
}

// CountDistinctSenders 统计不同发送者数量（匿名 NULL 发送者不计入）
func (s *Store) CountDistinctSenders(ctx context.Context, scope storage.AnalyticsScope) (int64, error) {
	return s.countDistinct(ctx, scope, "sender_id")
}

// CountDistinctRecipients 统计不同接收者数量
func (s *Store) CountDistinctRecipients(ctx context.Context, scope storage.AnalyticsScope) (int64, error) {
	return s.countDistinct(ctx, scope, "recipient_id")
}

func (s *Store) countDistinct(ctx context.Context, scope storage.AnalyticsScope, field string) (int64, error) {
	match, err := s.analyticsMatch(ctx, scope)
	if err != nil {
		return 0, err
	}
	// Distinct 不计 null 值
	match = append(match, bson.E{Key: field, Value: bson.D{{Key: "$ne", Value: nil}}})

	var values []string
	if err := s.col(ColRecognitions).Distinct(ctx, field, match).Decode(&values); err != nil {
		return 0, wrapError(err)
	}
	return int64(len(values)), nil
}
