// Package eventbus 事件总线类型定义
package eventbus

import (
	"time"
)

// ============================================================================
// 事件类型
// ============================================================================

// 认可事件类型
const (
	EventRecognitionCreated = "recognition.created"
	EventRecognitionUpdated = "recognition.updated"
	EventRecognitionDeleted = "recognition.deleted"
)

// RecognitionEvent 认可事件
//
// 匿名认可的事件中 SenderID 为 nil，与落库数据保持一致，
// 事件通道里不会泄露匿名发送者身份。
type RecognitionEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	RecognitionID string    `json:"recognition_id"`
	SenderID      *string   `json:"sender_id,omitempty"`
	RecipientID   string    `json:"recipient_id"`
	Visibility    string    `json:"visibility"`
	Message       string    `json:"message,omitempty"`
	Keywords      []string  `json:"keywords,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ============================================================================
// 频道常量
// ============================================================================

const (
	// ChannelPublicFeed 公共广播频道（public 认可进入）
	ChannelPublicFeed = "recognitions:feed"

	// KeyInboxChannel 每用户收件箱频道前缀
	KeyInboxChannel = "recognitions:inbox:"
)

// InboxChannel 返回指定用户的收件箱频道名
func InboxChannel(userID string) string {
	return KeyInboxChannel + userID
}
