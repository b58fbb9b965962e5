package recognition

import (
	"fmt"
	"strings"

	"kudos-admin/internal/shared/model"
)

// maxMessageLength 消息正文长度上限（去除首尾空白后）
const maxMessageLength = 500

// blockedSubstrings 屏蔽词表
// 小写子串匹配，不要求整词（"hateful" 同样命中 "hate"）
var blockedSubstrings = []string{
	"stupid",
	"idiot",
	"dumb",
	"hate",
	"useless",
}

// ValidateMessage 校验消息正文
// 以去除首尾空白后的文本为准：空、超长、含屏蔽词均拒绝
func ValidateMessage(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("%w: message is empty", ErrValidation)
	}
	if len([]rune(trimmed)) > maxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrValidation, maxMessageLength)
	}
	lowered := strings.ToLower(trimmed)
	for _, blocked := range blockedSubstrings {
		if strings.Contains(lowered, blocked) {
			return fmt.Errorf("%w: message contains blocked content", ErrValidation)
		}
	}
	return nil
}

// ValidateVisibilityForCreate 校验创建/更新时的可见性取值
// 只允许 public/private/anonymous，删除态只能通过软删除转换到达
func ValidateVisibilityForCreate(v model.Visibility) error {
	if !v.Valid() {
		return fmt.Errorf("%w: invalid visibility %q", ErrValidation, v)
	}
	return nil
}

// ValidateRecipient 校验接收者
// 接收者为空是输入错误；接收者等于发送者是业务冲突（不能给自己发认可）
func ValidateRecipient(recipientID, senderID string) error {
	if recipientID == "" {
		return fmt.Errorf("%w: recipient_id is required", ErrValidation)
	}
	if recipientID == senderID {
		return fmt.Errorf("%w: cannot send recognition to yourself", ErrConflict)
	}
	return nil
}
