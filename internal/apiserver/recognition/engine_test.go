// 引擎集成测试
//
// 使用 SQLite 内存数据库 + MemoryEventBus 验证引擎的完整行为：
// 校验、访问控制、关键词提取、软删除以及事件扇出语义。
package recognition

import (
	"context"
	"testing"
	"time"

	"kudos-admin/internal/shared/eventbus"
	"kudos-admin/internal/shared/model"
	"kudos-admin/internal/shared/storage/repository"
	sqlitedriver "kudos-admin/internal/shared/storage/driver/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine 创建基于 SQLite 内存数据库的测试引擎
func newTestEngine(t *testing.T) (*Engine, *eventbus.MemoryEventBus, *repository.Store) {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	bus := eventbus.NewMemoryEventBus()
	return NewEngine(store, bus, nil), bus, store
}

func seedUser(t *testing.T, store *repository.Store, id string) {
	t.Helper()
	require.NoError(t, store.CreateUser(context.Background(), &model.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: id,
		Role:        model.UserRoleEmployee,
		CreatedAt:   time.Now(),
	}))
}

// ============================================================================
// Create
// ============================================================================

func TestCreatePublicRecognition(t *testing.T) {
	e, bus, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob",
		Message:     "  excellent teamwork during the incident  ",
		Visibility:  model.VisibilityPublic,
	})
	require.NoError(t, err)

	require.NotNil(t, view.SenderID)
	assert.Equal(t, "alice", *view.SenderID)
	assert.Equal(t, "bob", view.RecipientID)
	assert.Equal(t, "excellent teamwork during the incident", view.Message)
	assert.Equal(t, []string{"excellent", "teamwork", "during", "incident"}, view.Keywords)
	require.NotNil(t, view.Sender)
	assert.Equal(t, "alice", view.Sender.DisplayName)
	require.NotNil(t, view.Recipient)

	// public：收件箱频道 + 公共频道都收到事件
	inbox := bus.InboxEvents("bob")
	require.Len(t, inbox, 1)
	assert.Equal(t, eventbus.EventRecognitionCreated, inbox[0].Type)
	assert.Equal(t, view.ID, inbox[0].RecognitionID)
	require.Len(t, bus.FeedEvents(), 1)
}

func TestCreatePrivateOnlyFansOutToInbox(t *testing.T) {
	e, bus, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	_, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob",
		Message:     "quietly appreciated",
		Visibility:  model.VisibilityPrivate,
	})
	require.NoError(t, err)

	assert.Len(t, bus.InboxEvents("bob"), 1)
	assert.Empty(t, bus.FeedEvents())
}

func TestCreateAnonymousStripsSenderEverywhere(t *testing.T) {
	e, bus, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob",
		Message:     "someone noticed your effort",
		Visibility:  model.VisibilityAnonymous,
	})
	require.NoError(t, err)

	// 视图中没有发送者
	assert.Nil(t, view.SenderID)
	assert.Nil(t, view.Sender)

	// 落库记录没有发送者
	rec, err := store.GetRecognition(ctx, view.ID)
	require.NoError(t, err)
	assert.Nil(t, rec.SenderID)

	// 事件中没有发送者，且不进公共频道
	inbox := bus.InboxEvents("bob")
	require.Len(t, inbox, 1)
	assert.Nil(t, inbox[0].SenderID)
	assert.Empty(t, bus.FeedEvents())
}

func TestCreateValidationFailures(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	// 给自己发认可：无论消息内容如何都是冲突
	_, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "alice", Message: "well done me", Visibility: model.VisibilityPublic,
	})
	assert.ErrorIs(t, err, ErrConflict)

	// 接收者不存在
	_, err = e.Create(ctx, "alice", CreateInput{
		RecipientID: "ghost", Message: "hello there", Visibility: model.VisibilityPublic,
	})
	assert.ErrorIs(t, err, ErrValidation)

	// 非法可见性
	_, err = e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "hello there", Visibility: "deleted",
	})
	assert.ErrorIs(t, err, ErrValidation)

	// 屏蔽词
	_, err = e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "that was dumb", Visibility: model.VisibilityPublic,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateSurvivesFanoutFailure(t *testing.T) {
	e, bus, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	bus.SetPublishError(assert.AnError)

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "resilient delivery", Visibility: model.VisibilityPublic,
	})
	// 扇出失败被吞掉，创建成功且记录已落库
	require.NoError(t, err)

	rec, err := store.GetRecognition(ctx, view.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
}

// ============================================================================
// 读取
// ============================================================================

func TestGetByIDMergesNotFoundAndUnreadable(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")
	seedUser(t, store, "carol")

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "private appreciation", Visibility: model.VisibilityPrivate,
	})
	require.NoError(t, err)

	// 发送者和接收者可读
	_, err = e.GetByID(ctx, view.ID, "alice")
	assert.NoError(t, err)
	_, err = e.GetByID(ctx, view.ID, "bob")
	assert.NoError(t, err)

	// 第三方：NotFound 而非 Permission，不泄露记录存在性
	_, err = e.GetByID(ctx, view.ID, "carol")
	assert.ErrorIs(t, err, ErrNotFound)

	// 不存在的记录：同样的错误
	_, err = e.GetByID(ctx, "rec-nonexistent", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnonymousHiddenFromOriginalSender(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "anonymous praise", Visibility: model.VisibilityAnonymous,
	})
	require.NoError(t, err)

	// 发送者身份未落库，原发送者也按第三方处理
	_, err = e.GetByID(ctx, view.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	// 接收者可读
	got, err := e.GetByID(ctx, view.ID, "bob")
	require.NoError(t, err)
	assert.Nil(t, got.SenderID)
}

func TestListAppliesReadabilityFilter(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")
	seedUser(t, store, "carol")

	_, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "public praise", Visibility: model.VisibilityPublic,
	})
	require.NoError(t, err)
	_, err = e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "private praise", Visibility: model.VisibilityPrivate,
	})
	require.NoError(t, err)

	// carol 只能看到 public
	views, err := e.List(ctx, "carol", ListFilters{})
	require.NoError(t, err)
	assert.Len(t, views, 1)

	// bob 是接收者，两条都可见
	views, err = e.List(ctx, "bob", ListFilters{})
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListMine(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	_, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "direct praise", Visibility: model.VisibilityPublic,
	})
	require.NoError(t, err)
	_, err = e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "quiet praise", Visibility: model.VisibilityAnonymous,
	})
	require.NoError(t, err)

	// 匿名发出的认可没有发送者记录，不出现在 sent 方向
	sent, err := e.ListMine(ctx, "alice", DirectionSent, 0)
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	received, err := e.ListMine(ctx, "bob", DirectionReceived, 0)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	_, err = e.ListMine(ctx, "alice", "sideways", 0)
	assert.ErrorIs(t, err, ErrValidation)
}

// ============================================================================
// 更新
// ============================================================================

func TestUpdateRecomputesKeywordsOnMessageChange(t *testing.T) {
	e, bus, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "excellent teamwork", Visibility: model.VisibilityPublic,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"excellent", "teamwork"}, view.Keywords)

	msg := "outstanding delivery skills"
	updated, err := e.Update(ctx, "alice", view.ID, UpdateInput{Message: &msg})
	require.NoError(t, err)
	assert.Equal(t, []string{"outstanding", "delivery", "skills"}, updated.Keywords)

	// 更新事件同样扇出
	inbox := bus.InboxEvents("bob")
	require.Len(t, inbox, 2)
	assert.Equal(t, eventbus.EventRecognitionUpdated, inbox[1].Type)
}

func TestUpdatePermissions(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "solid effort", Visibility: model.VisibilityPublic,
	})
	require.NoError(t, err)

	msg := "revised message"

	// 接收者也不能改
	_, err = e.Update(ctx, "bob", view.ID, UpdateInput{Message: &msg})
	assert.ErrorIs(t, err, ErrPermission)

	// 空更新
	_, err = e.Update(ctx, "alice", view.ID, UpdateInput{})
	assert.ErrorIs(t, err, ErrValidation)

	// 不能转为匿名
	anon := model.VisibilityAnonymous
	_, err = e.Update(ctx, "alice", view.ID, UpdateInput{Visibility: &anon})
	assert.ErrorIs(t, err, ErrValidation)

	// 可以在 public/private 间切换
	private := model.VisibilityPrivate
	updated, err := e.Update(ctx, "alice", view.ID, UpdateInput{Visibility: &private})
	require.NoError(t, err)
	assert.Equal(t, model.VisibilityPrivate, updated.Visibility)
}

func TestAnonymousImmutableByEveryone(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "anonymous cheer", Visibility: model.VisibilityAnonymous,
	})
	require.NoError(t, err)

	msg := "edited"
	// 原发送者也不能改（身份未落库，canMutate 恒为 false）
	_, err = e.Update(ctx, "alice", view.ID, UpdateInput{Message: &msg})
	assert.ErrorIs(t, err, ErrPermission)

	err = e.SoftDelete(ctx, "alice", view.ID)
	assert.ErrorIs(t, err, ErrPermission)
}

// ============================================================================
// 软删除
// ============================================================================

func TestSoftDeleteLifecycle(t *testing.T) {
	e, bus, store := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")

	view, err := e.Create(ctx, "alice", CreateInput{
		RecipientID: "bob", Message: "soon to vanish", Visibility: model.VisibilityPublic,
	})
	require.NoError(t, err)

	// 非发送者不能删
	err = e.SoftDelete(ctx, "bob", view.ID)
	assert.ErrorIs(t, err, ErrPermission)

	require.NoError(t, e.SoftDelete(ctx, "alice", view.ID))

	// 所有查看者（含原发送者）都拿到 NotFound
	_, err = e.GetByID(ctx, view.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.GetByID(ctx, view.ID, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	// 列表与 mine 均不再出现
	views, err := e.List(ctx, "bob", ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, views)
	sent, err := e.ListMine(ctx, "alice", DirectionSent, 0)
	require.NoError(t, err)
	assert.Empty(t, sent)

	// 重复删除与删除后更新均视同不存在
	err = e.SoftDelete(ctx, "alice", view.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	msg := "too late"
	_, err = e.Update(ctx, "alice", view.ID, UpdateInput{Message: &msg})
	assert.ErrorIs(t, err, ErrNotFound)

	// 删除事件扇出：创建 + 删除
	inbox := bus.InboxEvents("bob")
	require.Len(t, inbox, 2)
	assert.Equal(t, eventbus.EventRecognitionDeleted, inbox[1].Type)
	assert.Empty(t, inbox[1].Message)
}
