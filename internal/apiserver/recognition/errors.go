package recognition

import "errors"

// 业务错误分类，HTTP 层通过 errors.Is 映射状态码
var (
	// ErrValidation 输入非法：消息为空/超长/包含屏蔽词、可见性非法、接收者缺失
	ErrValidation = errors.New("validation failed")

	// ErrConflict 业务冲突：给自己发认可
	ErrConflict = errors.New("conflict")

	// ErrPermission 角色或所有权检查失败
	ErrPermission = errors.New("permission denied")

	// ErrNotFound 记录不存在或当前查看者不可读
	// 两种情况刻意合并，避免向无权限调用方泄露记录是否存在
	ErrNotFound = errors.New("recognition not found")
)
