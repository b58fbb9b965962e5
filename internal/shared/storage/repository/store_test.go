// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证 repository 层所有存储接口的正确性。
// 无需外部数据库依赖，可在任何环境下运行。
package repository

import (
	"context"
	"testing"
	"time"

	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/storage"
	"kudos-admin/internal/shared/storage/dbutil"
	sqlitedriver "kudos-admin/internal/shared/storage/driver/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

// seedUser 插入一个测试用户
func seedUser(t *testing.T, s *Store, id string, role model.UserRole, teamID *string) {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), &model.User{
		ID:           id,
		Email:        id + "@example.com",
		DisplayName:  id,
		PasswordHash: "hash",
		Role:         role,
		TeamID:       teamID,
		CreatedAt:    time.Now(),
	}))
}

// seedRecognition 插入一条测试认可
func seedRecognition(t *testing.T, s *Store, id string, sender *string, recipient string, visibility model.Visibility, keywords []string) {
	t.Helper()
	now := time.Now().Truncate(time.Second)
	require.NoError(t, s.CreateRecognition(context.Background(), &model.Recognition{
		ID:          id,
		SenderID:    sender,
		RecipientID: recipient,
		Message:     "great work on everything",
		Visibility:  visibility,
		Keywords:    keywords,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
}

func strPtr(s string) *string { return &s }

// ============================================================================
// Dialect 基础测试
// ============================================================================

func TestDialectTypes(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, dbutil.DriverSQLite, d.DriverType())
	assert.Equal(t, "datetime('now')", d.CurrentTimestamp())
}

func TestRebind(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		d.Rebind("SELECT * FROM t WHERE id = $1 AND name = $2"))
	// 应去除 PG 类型转换
	assert.Equal(t, "UPDATE t SET status = ? WHERE id = ?",
		d.Rebind("UPDATE t SET status = $1::varchar WHERE id = $2"))
}

// ============================================================================
// User / Team 测试
// ============================================================================

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	user := &model.User{
		ID:           "user-001",
		Email:        "wei@example.com",
		DisplayName:  "Zhang Wei",
		PasswordHash: "bcrypt-hash",
		Role:         model.UserRoleEmployee,
		CreatedAt:    now,
	}
	require.NoError(t, s.CreateUser(ctx, user))

	// 重复邮箱应失败（UNIQUE 约束）
	dup := &model.User{ID: "user-002", Email: "wei@example.com", DisplayName: "dup", PasswordHash: "h", Role: model.UserRoleEmployee, CreatedAt: now}
	assert.Error(t, s.CreateUser(ctx, dup))

	got, err := s.GetUserByID(ctx, "user-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "wei@example.com", got.Email)
	assert.Equal(t, model.UserRoleEmployee, got.Role)
	assert.Nil(t, got.TeamID)

	got, err = s.GetUserByEmail(ctx, "wei@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-001", got.ID)

	// 不存在返回 (nil, nil)
	got, err = s.GetUserByID(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.UpdateUserPassword(ctx, "user-001", "new-hash"))
	got, _ = s.GetUserByID(ctx, "user-001")
	assert.Equal(t, "new-hash", got.PasswordHash)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestTeamCRUDAndMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	team := &model.Team{ID: "team-001", Name: "Platform", Description: "平台组", CreatedAt: time.Now()}
	require.NoError(t, s.CreateTeam(ctx, team))

	got, err := s.GetTeam(ctx, "team-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Platform", got.Name)

	got, err = s.GetTeam(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)

	seedUser(t, s, "alice", model.UserRoleEmployee, strPtr("team-001"))
	seedUser(t, s, "bob", model.UserRoleManager, strPtr("team-001"))
	seedUser(t, s, "carol", model.UserRoleEmployee, nil)

	members, err := s.ListTeamMembers(ctx, "team-001")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	teams, err := s.ListTeams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

// ============================================================================
// Recognition 测试
// ============================================================================

func TestRecognitionCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice", model.UserRoleEmployee, nil)
	seedUser(t, s, "bob", model.UserRoleEmployee, nil)

	seedRecognition(t, s, "rec-001", strPtr("alice"), "bob", model.VisibilityPublic,
		[]string{"great", "work"})

	got, err := s.GetRecognition(ctx, "rec-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bob", got.RecipientID)
	require.NotNil(t, got.SenderID)
	assert.Equal(t, "alice", *got.SenderID)
	assert.Equal(t, []string{"great", "work"}, got.Keywords)
	assert.Nil(t, got.DeletedAt)

	// 不存在返回 (nil, nil)
	got, err = s.GetRecognition(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)

	// 更新消息与关键词
	msg := "updated message"
	require.NoError(t, s.UpdateRecognition(ctx, "rec-001", &storage.RecognitionUpdate{
		Message: &msg, Keywords: []string{"updated"},
	}))
	got, _ = s.GetRecognition(ctx, "rec-001")
	assert.Equal(t, "updated message", got.Message)
	assert.Equal(t, []string{"updated"}, got.Keywords)

	// 仅更新可见性，消息保持不变
	vis := model.VisibilityPrivate
	require.NoError(t, s.UpdateRecognition(ctx, "rec-001", &storage.RecognitionUpdate{Visibility: &vis}))
	got, _ = s.GetRecognition(ctx, "rec-001")
	assert.Equal(t, model.VisibilityPrivate, got.Visibility)
	assert.Equal(t, "updated message", got.Message)

	// 更新不存在的记录
	err = s.UpdateRecognition(ctx, "nonexistent", &storage.RecognitionUpdate{Message: &msg})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecognitionAnonymousSender(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "bob", model.UserRoleEmployee, nil)
	seedRecognition(t, s, "rec-anon", nil, "bob", model.VisibilityAnonymous, []string{"quiet"})

	got, err := s.GetRecognition(ctx, "rec-anon")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.SenderID)
}

func TestRecognitionSoftDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice", model.UserRoleEmployee, nil)
	seedUser(t, s, "bob", model.UserRoleEmployee, nil)
	seedRecognition(t, s, "rec-001", strPtr("alice"), "bob", model.VisibilityPublic, nil)

	require.NoError(t, s.SoftDeleteRecognition(ctx, "rec-001", time.Now()))

	// Get 仍能取到（软删除语义由业务层判定）
	got, err := s.GetRecognition(ctx, "rec-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.DeletedAt)

	// 常规列表不包含软删除记录
	recs, err := s.ListRecognitions(ctx, storage.RecognitionQuery{})
	require.NoError(t, err)
	assert.Len(t, recs, 0)

	// 审计查询包含
	recs, err = s.ListRecognitions(ctx, storage.RecognitionQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// 重复删除视同不存在
	err = s.SoftDeleteRecognition(ctx, "rec-001", time.Now())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// 软删除记录不可更新
	msg := "x"
	err = s.UpdateRecognition(ctx, "rec-001", &storage.RecognitionUpdate{Message: &msg})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListRecognitionsViewerFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice", model.UserRoleEmployee, nil)
	seedUser(t, s, "bob", model.UserRoleEmployee, nil)
	seedUser(t, s, "carol", model.UserRoleEmployee, nil)

	seedRecognition(t, s, "rec-pub", strPtr("alice"), "bob", model.VisibilityPublic, nil)
	seedRecognition(t, s, "rec-priv", strPtr("alice"), "bob", model.VisibilityPrivate, nil)
	seedRecognition(t, s, "rec-anon", nil, "carol", model.VisibilityAnonymous, nil)

	// carol 只能看到 public 和自己收到的匿名认可
	recs, err := s.ListRecognitions(ctx, storage.RecognitionQuery{ViewerID: "carol"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// bob 能看到 public 和自己收到的 private
	recs, err = s.ListRecognitions(ctx, storage.RecognitionQuery{ViewerID: "bob"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// alice 作为发送者能看到自己的 private，但看不到匿名消息
	recs, err = s.ListRecognitions(ctx, storage.RecognitionQuery{ViewerID: "alice"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// 按接收者过滤
	recs, err = s.ListRecognitions(ctx, storage.RecognitionQuery{RecipientID: "bob"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// 按发送者过滤（匿名消息 sender 为 NULL，不命中）
	recs, err = s.ListRecognitions(ctx, storage.RecognitionQuery{SenderID: "alice"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// 按可见性过滤
	recs, err = s.ListRecognitions(ctx, storage.RecognitionQuery{Visibility: model.VisibilityAnonymous})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// 计数与列表一致
	count, err := s.CountRecognitions(ctx, storage.RecognitionQuery{ViewerID: "carol"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestListRecognitionsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice", model.UserRoleEmployee, nil)
	seedUser(t, s, "bob", model.UserRoleEmployee, nil)
	for i := 0; i < 5; i++ {
		seedRecognition(t, s, "rec-"+string(rune('a'+i)), strPtr("alice"), "bob", model.VisibilityPublic, nil)
	}

	recs, err := s.ListRecognitions(ctx, storage.RecognitionQuery{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	recs, err = s.ListRecognitions(ctx, storage.RecognitionQuery{Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

// ============================================================================
// Analytics 测试
// ============================================================================

func TestTopKeywords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice", model.UserRoleEmployee, nil)
	seedUser(t, s, "bob", model.UserRoleEmployee, nil)

	seedRecognition(t, s, "rec-1", strPtr("alice"), "bob", model.VisibilityPublic, []string{"teamwork", "focus"})
	seedRecognition(t, s, "rec-2", strPtr("alice"), "bob", model.VisibilityPublic, []string{"teamwork"})
	// private 同样参与聚合，仅软删除排除
	seedRecognition(t, s, "rec-3", strPtr("alice"), "bob", model.VisibilityPrivate, []string{"teamwork", "secret"})

	kws, err := s.TopKeywords(ctx, storage.AnalyticsScope{}, 10)
	require.NoError(t, err)
	require.Len(t, kws, 3)
	assert.Equal(t, "teamwork", kws[0].Keyword)
	assert.EqualValues(t, 3, kws[0].Count)
	// 同次数按字典序
	assert.Equal(t, "focus", kws[1].Keyword)
	assert.Equal(t, "secret", kws[2].Keyword)

	// 软删除后不再计入
	require.NoError(t, s.SoftDeleteRecognition(ctx, "rec-3", time.Now()))
	kws, err = s.TopKeywords(ctx, storage.AnalyticsScope{}, 10)
	require.NoError(t, err)
	require.Len(t, kws, 2)
	assert.EqualValues(t, 2, kws[0].Count)
}

func TestTopKeywordsTeamScope(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTeam(ctx, &model.Team{ID: "team-001", Name: "Platform", CreatedAt: time.Now()}))
	seedUser(t, s, "alice", model.UserRoleEmployee, strPtr("team-001"))
	seedUser(t, s, "bob", model.UserRoleEmployee, nil)

	seedRecognition(t, s, "rec-team", strPtr("bob"), "alice", model.VisibilityPublic, []string{"platform"})
	seedRecognition(t, s, "rec-other", strPtr("alice"), "bob", model.VisibilityPublic, []string{"other"})

	kws, err := s.TopKeywords(ctx, storage.AnalyticsScope{TeamID: "team-001"}, 10)
	require.NoError(t, err)
	require.Len(t, kws, 1)
	assert.Equal(t, "platform", kws[0].Keyword)
}

func TestTopRecipientsAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice", model.UserRoleEmployee, nil)
	seedUser(t, s, "bob", model.UserRoleEmployee, nil)
	seedUser(t, s, "carol", model.UserRoleEmployee, nil)

	seedRecognition(t, s, "rec-1", strPtr("alice"), "bob", model.VisibilityPublic, nil)
	seedRecognition(t, s, "rec-2", strPtr("carol"), "bob", model.VisibilityPublic, nil)
	seedRecognition(t, s, "rec-3", strPtr("alice"), "carol", model.VisibilityPublic, nil)

	top, err := s.TopRecipients(ctx, storage.AnalyticsScope{}, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].UserID)
	assert.EqualValues(t, 2, top[0].Count)

	count, err := s.CountRecognitionsInScope(ctx, storage.AnalyticsScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestCountByVisibilityAndDistinct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice", model.UserRoleEmployee, nil)
	seedUser(t, s, "bob", model.UserRoleEmployee, nil)
	seedUser(t, s, "carol", model.UserRoleEmployee, nil)

	seedRecognition(t, s, "rec-1", strPtr("alice"), "bob", model.VisibilityPublic, nil)
	seedRecognition(t, s, "rec-2", strPtr("alice"), "carol", model.VisibilityPublic, nil)
	seedRecognition(t, s, "rec-3", strPtr("carol"), "bob", model.VisibilityPrivate, nil)
	// 匿名发送者不计入 distinct senders
	seedRecognition(t, s, "rec-4", nil, "bob", model.VisibilityAnonymous, nil)

	counts, err := s.CountRecognitionsByVisibility(ctx, storage.AnalyticsScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[model.VisibilityPublic])
	assert.EqualValues(t, 1, counts[model.VisibilityPrivate])
	assert.EqualValues(t, 1, counts[model.VisibilityAnonymous])

	senders, err := s.CountDistinctSenders(ctx, storage.AnalyticsScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, senders)

	recipients, err := s.CountDistinctRecipients(ctx, storage.AnalyticsScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, recipients)

	// 软删除后各项计数同步回落
	require.NoError(t, s.SoftDeleteRecognition(ctx, "rec-3", time.Now()))
	counts, err = s.CountRecognitionsByVisibility(ctx, storage.AnalyticsScope{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, counts[model.VisibilityPrivate])
}
