// Package model 定义核心数据模型
//
// user.go 包含用户与组织相关的数据模型定义：
//   - User：组织成员
//   - UserRole：角色枚举（按权限升序全序排列）
package model

import "time"

// ============================================================================
// UserRole - 用户角色
// ============================================================================

// UserRole 用户角色
//
// 角色按权限升序构成全序：employee < manager < hr < admin。
// 角色之间的比较统一通过 policy.Rank 完成，不要在别处重复排序表。
type UserRole string

const (
	// UserRoleEmployee 普通员工
	UserRoleEmployee UserRole = "employee"

	// UserRoleManager 团队管理者（可查看团队分析）
	UserRoleManager UserRole = "manager"

	// UserRoleHR 人力资源（可查看组织级分析）
	UserRoleHR UserRole = "hr"

	// UserRoleAdmin 系统管理员
	UserRoleAdmin UserRole = "admin"
)

// ============================================================================
// User - 组织成员
// ============================================================================

// User 组织成员
//
// 用户由目录管理接口创建，创建后基本信息不可变（改名/调岗不在本服务范围内）。
// TeamID 为空表示未加入任何团队。
type User struct {
	ID           string    `json:"id" bson:"_id" db:"id"`
	Email        string    `json:"email" bson:"email" db:"email"`
	DisplayName  string    `json:"display_name" bson:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" bson:"password_hash" db:"password_hash"` // never expose in JSON
	Role         UserRole  `json:"role" bson:"role" db:"role"`
	TeamID       *string   `json:"team_id,omitempty" bson:"team_id,omitempty" db:"team_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// UserRef 用户引用（嵌入在格式化输出中的精简视图）
type UserRef struct {
	ID          string `json:"id" bson:"id"`
	DisplayName string `json:"display_name" bson:"display_name"`
	Email       string `json:"email,omitempty" bson:"email,omitempty"`
}

// Ref 返回用户的引用视图
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email}
}
