package recognition

import (
	"context"
	"time"

	"kudos-admin/internal/shared/model"
)

// View 面向调用方的认可视图
//
// 匿名认可的 Sender/SenderID 恒为 nil——持久化记录本身就不携带发送者，
// 格式化层不需要额外抹除，但测试仍然覆盖这一点。
type View struct {
	ID          string           `json:"id"`
	SenderID    *string          `json:"sender_id,omitempty"`
	Sender      *model.UserRef   `json:"sender,omitempty"`
	RecipientID string           `json:"recipient_id"`
	Recipient   *model.UserRef   `json:"recipient,omitempty"`
	Message     string           `json:"message"`
	Visibility  model.Visibility `json:"visibility"`
	Keywords    []string         `json:"keywords"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// formatView 将认可记录格式化为视图，附带用户目录信息
// 目录查找失败只降级为无姓名的视图，不影响主流程
func (e *Engine) formatView(ctx context.Context, rec *model.Recognition) *View {
	view := &View{
		ID:          rec.ID,
		SenderID:    rec.SenderID,
		RecipientID: rec.RecipientID,
		Message:     rec.Message,
		Visibility:  rec.Visibility,
		Keywords:    rec.Keywords,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if view.Keywords == nil {
		view.Keywords = []string{}
	}

	if rec.SenderID != nil {
		if sender, err := e.store.GetUserByID(ctx, *rec.SenderID); err == nil {
			view.Sender = sender.Ref()
		}
	}
	if recipient, err := e.store.GetUserByID(ctx, rec.RecipientID); err == nil {
		view.Recipient = recipient.Ref()
	}
	return view
}

// formatViews 批量格式化，按输入顺序返回
func (e *Engine) formatViews(ctx context.Context, recs []*model.Recognition) []*View {
	views := make([]*View, 0, len(recs))
	for _, rec := range recs {
		views = append(views, e.formatView(ctx, rec))
	}
	return views
}
