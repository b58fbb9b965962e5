package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/storage"
)

// defaultListLimit 列表查询的默认上限
const defaultListLimit = 100

const recognitionColumns = `id, sender_id, recipient_id, message, visibility, keywords, created_at, updated_at, deleted_at`

// CreateRecognition 创建认可
func (r *Store) CreateRecognition(ctx context.Context, rec *model.Recognition) error {
	keywords, err := marshalKeywords(rec.Keywords)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO recognitions (id, sender_id, recipient_id, message, visibility, keywords, created_at, updated_at, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`),
		rec.ID, rec.SenderID, rec.RecipientID, rec.Message, rec.Visibility,
		keywords, rec.CreatedAt, rec.UpdatedAt, rec.DeletedAt,
	)
	return err
}

// GetRecognition 按 ID 获取认可（包含软删除记录）
// 不存在时返回 (nil, nil)，与 UserStore 的查找行为一致
func (r *Store) GetRecognition(ctx context.Context, id string) (*model.Recognition, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+recognitionColumns+` FROM recognitions WHERE id = $1`), id)
	rec, err := scanRecognition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListRecognitions 按查询条件列出认可，按创建时间倒序
func (r *Store) ListRecognitions(ctx context.Context, q storage.RecognitionQuery) ([]*model.Recognition, error) {
	conditions, args := recognitionConditions(q)
	query := `SELECT ` + recognitionColumns + ` FROM recognitions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []*model.Recognition{}
	for rows.Next() {
		rec, err := scanRecognition(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountRecognitions 按查询条件统计认可数量
func (r *Store) CountRecognitions(ctx context.Context, q storage.RecognitionQuery) (int64, error) {
	conditions, args := recognitionConditions(q)
	query := `SELECT COUNT(*) FROM recognitions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	err := r.db.QueryRowContext(ctx, r.rebind(query), args...).Scan(&count)
	return count, err
}

// UpdateRecognition 部分更新消息正文/关键词/可见性
// 软删除记录不可更新，返回 ErrNotFound
func (r *Store) UpdateRecognition(ctx context.Context, id string, upd *storage.RecognitionUpdate) error {
	var sets []string
	var args []interface{}
	next := func() int { return len(args) + 1 }

	if upd.Message != nil {
		kw, err := marshalKeywords(upd.Keywords)
		if err != nil {
			return err
		}
		sets = append(sets, fmt.Sprintf("message = $%d", next()))
		args = append(args, *upd.Message)
		sets = append(sets, fmt.Sprintf("keywords = $%d", next()))
		args = append(args, kw)
	}
	if upd.Visibility != nil {
		sets = append(sets, fmt.Sprintf("visibility = $%d", next()))
		args = append(args, *upd.Visibility)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = "+r.now())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE recognitions SET %s WHERE id = $%d AND deleted_at IS NULL`,
		strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, r.rebind(query), args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SoftDeleteRecognition 软删除认可
// 对不存在或已删除的记录返回 ErrNotFound（删除不可逆，重复删除视同不存在）
func (r *Store) SoftDeleteRecognition(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE recognitions SET deleted_at = $1, updated_at = $2
		 WHERE id = $3 AND deleted_at IS NULL`),
		at, at, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// recognitionConditions 构建查询条件（PG 风格占位符按顺序编号）
func recognitionConditions(q storage.RecognitionQuery) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	next := func() int { return len(args) + 1 }

	if !q.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if q.ViewerID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(visibility = 'public' OR recipient_id = $%d OR sender_id = $%d)", next(), next()+1))
		args = append(args, q.ViewerID, q.ViewerID)
	}
	if q.SenderID != "" {
		conditions = append(conditions, fmt.Sprintf("sender_id = $%d", next()))
		args = append(args, q.SenderID)
	}
	if q.RecipientID != "" {
		conditions = append(conditions, fmt.Sprintf("recipient_id = $%d", next()))
		args = append(args, q.RecipientID)
	}
	if q.Visibility != "" {
		conditions = append(conditions, fmt.Sprintf("visibility = $%d", next()))
		args = append(args, q.Visibility)
	}
	return conditions, args
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecognition 扫描一行认可记录
func scanRecognition(row rowScanner) (*model.Recognition, error) {
	rec := &model.Recognition{}
	var keywords sql.NullString
	if err := row.Scan(&rec.ID, &rec.SenderID, &rec.RecipientID, &rec.Message,
		&rec.Visibility, &keywords, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt); err != nil {
		return nil, err
	}
	kw, err := unmarshalKeywords(keywords)
	if err != nil {
		return nil, err
	}
	rec.Keywords = kw
	return rec, nil
}
