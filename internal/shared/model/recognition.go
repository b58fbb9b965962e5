// Package model 定义核心数据模型
//
// recognition.go 包含认可（recognition）相关的数据模型定义：
//   - Recognition：一条认可消息
//   - Visibility：可见性枚举（public/private/anonymous）
//
// 注意：删除状态不是第四种可见性。软删除通过 DeletedAt 显式表达，
// 可见性枚举只描述内容的受众范围，两个概念不共用一个字段。
package model

import "time"

// ============================================================================
// Visibility - 可见性
// ============================================================================

// Visibility 认可消息的受众范围
type Visibility string

const (
	// VisibilityPublic 对全组织可见，并进入公共广播频道
	VisibilityPublic Visibility = "public"

	// VisibilityPrivate 仅发送者与接收者可见
	VisibilityPrivate Visibility = "private"

	// VisibilityAnonymous 接收者可见，发送者身份不落库
	VisibilityAnonymous Visibility = "anonymous"
)

// Valid 是否为合法的可见性取值
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityAnonymous:
		return true
	}
	return false
}

// ============================================================================
// Recognition - 认可消息
// ============================================================================

// Recognition 一条认可消息
//
// 不变式：
//   - SenderID == nil 当且仅当创建时可见性为 anonymous
//   - RecipientID 创建时不等于发送者
//   - Keywords 由当前 Message 确定性导出，仅在消息被编辑时重算
//   - DeletedAt != nil 为终态，不可逆；软删除后不出现在任何常规读取路径
type Recognition struct {
	ID          string     `json:"id" bson:"_id" db:"id"`
	SenderID    *string    `json:"sender_id,omitempty" bson:"sender_id,omitempty" db:"sender_id"`
	RecipientID string     `json:"recipient_id" bson:"recipient_id" db:"recipient_id"`
	Message     string     `json:"message" bson:"message" db:"message"`
	Visibility  Visibility `json:"visibility" bson:"visibility" db:"visibility"`
	Keywords    []string   `json:"keywords" bson:"keywords" db:"keywords"` // 最多 5 个，保持消息中的出现顺序
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty" db:"deleted_at"`
}

// Deleted 是否已被软删除
func (r *Recognition) Deleted() bool {
	return r.DeletedAt != nil
}
