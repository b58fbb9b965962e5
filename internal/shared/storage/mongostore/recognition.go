package mongostore

import (
	"context"
	"time"

	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// defaultListLimit 列表查询的默认上限
const defaultListLimit = 100

// CreateRecognition 创建认可
func (s *Store) CreateRecognition(ctx context.Context, rec *model.Recognition) error {
	if rec.Keywords == nil {
		rec.Keywords = []string{}
	}
	return insertOne(ctx, s.col(ColRecognitions), rec)
}

// GetRecognition 按 ID 获取认可（包含软删除记录）
func (s *Store) GetRecognition(ctx context.Context, id string) (*model.Recognition, error) {
	return findOne[model.Recognition](ctx, s.col(ColRecognitions), bson.D{{Key: "_id", Value: id}})
}

// ListRecognitions 按查询条件列出认可，按创建时间倒序
func (s *Store) ListRecognitions(ctx context.Context, q storage.RecognitionQuery) ([]*model.Recognition, error) {
	filter := recognitionFilter(q)

	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(q.Offset))

	return findMany[model.Recognition](ctx, s.col(ColRecognitions), filter, opts)
}

// CountRecognitions 按查询条件统计认可数量
func (s *Store) CountRecognitions(ctx context.Context, q storage.RecognitionQuery) (int64, error) {
	count, err := s.col(ColRecognitions).CountDocuments(ctx, recognitionFilter(q))
	return count, wrapError(err)
}

// UpdateRecognition 部分更新消息正文/关键词/可见性
// 软删除记录不可更新，返回 ErrNotFound
func (s *Store) UpdateRecognition(ctx context.Context, id string, upd *storage.RecognitionUpdate) error {
	set := bson.D{}
	if upd.Message != nil {
		keywords := upd.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		set = append(set,
			bson.E{Key: "message", Value: *upd.Message},
			bson.E{Key: "keywords", Value: keywords})
	}
	if upd.Visibility != nil {
		set = append(set, bson.E{Key: "visibility", Value: *upd.Visibility})
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, bson.E{Key: "updated_at", Value: time.Now().UTC()})

	return updateMatched(ctx, s.col(ColRecognitions),
		bson.D{{Key: "_id", Value: id}, {Key: "deleted_at", Value: nil}}, set)
}

// SoftDeleteRecognition 软删除认可
// 对不存在或已删除的记录返回 ErrNotFound（删除不可逆，重复删除视同不存在）
func (s *Store) SoftDeleteRecognition(ctx context.Context, id string, at time.Time) error {
	return updateMatched(ctx, s.col(ColRecognitions),
		bson.D{{Key: "_id", Value: id}, {Key: "deleted_at", Value: nil}},
		bson.D{
			{Key: "deleted_at", Value: at},
			{Key: "updated_at", Value: at},
		})
}

// recognitionFilter 构建查询过滤条件
// deleted_at 以缺失/null 表示未删除，bson null 匹配两种情况
func recognitionFilter(q storage.RecognitionQuery) bson.D {
	filter := bson.D{}
	if !q.IncludeDeleted {
		filter = append(filter, bson.E{Key: "deleted_at", Value: nil})
	}
	if q.ViewerID != "" {
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "visibility", Value: model.VisibilityPublic}},
			bson.D{{Key: "recipient_id", Value: q.ViewerID}},
			bson.D{{Key: "sender_id", Value: q.ViewerID}},
		}})
	}
	if q.SenderID != "" {
		filter = append(filter, bson.E{Key: "sender_id", Value: q.SenderID})
	}
	if q.RecipientID != "" {
		filter = append(filter, bson.E{Key: "recipient_id", Value: q.RecipientID})
	}
	if q.Visibility != "" {
		filter = append(filter, bson.E{Key: "visibility", Value: q.Visibility})
	}
	return filter
}
