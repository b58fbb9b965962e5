// Package policy 实现访问控制策略
//
// 本包是纯函数集合：不访问存储、不产生副作用，所有判定只依赖入参。
// 两类策略：
//   - 角色层级：Rank / HasRole / CanAccessTeamAnalytics / CanAccessOrganizationAnalytics
//   - 内容可见性：IsReadable / CanMutate
//
// 可见性判定只看消息本身的可见性与归属，不看删除状态；
// 软删除的过滤由读取路径（engine/storage）负责。
package policy

import "kudos-admin/internal/shared/model"

// ============================================================================
// 角色层级
// ============================================================================

// roleRanks 角色权限排序表，数值越大权限越高
var roleRanks = map[model.UserRole]int{
	model.UserRoleEmployee: 1,
	model.UserRoleManager:  2,
	model.UserRoleHR:       3,
	model.UserRoleAdmin:    4,
}

// Rank 返回角色的权限等级
//
// 未知角色返回 0，低于任何合法角色。调用方不需要（也不应该）
// 预先校验角色合法性：未知角色在所有层级判定中自然失败。
func Rank(role model.UserRole) int {
	return roleRanks[role]
}

// HasRole 判断 role 是否达到 required 要求的权限等级
//
// 层级是传递的：admin 满足所有 manager 要求。
// 若 required 本身未知，任何合法角色都满足（Rank(required) == 0）。
func HasRole(role, required model.UserRole) bool {
	return Rank(role) >= Rank(required)
}

// CanAccessTeamAnalytics 是否可以查看团队级分析（manager 及以上）
func CanAccessTeamAnalytics(role model.UserRole) bool {
	return HasRole(role, model.UserRoleManager)
}

// CanAccessOrganizationAnalytics 是否可以查看组织级分析（hr 及以上）
func CanAccessOrganizationAnalytics(role model.UserRole) bool {
	return HasRole(role, model.UserRoleHR)
}

// ============================================================================
// 内容可见性
// ============================================================================

// IsReadable 判断 viewer 是否可以读取该条认可
//
// 规则（满足其一即可）：
//   - 可见性为 public
//   - viewer 是接收者
//   - viewer 是发送者（匿名消息 SenderID 为 nil，发送者分支自然失败，
//     即使原发送者本人也无法凭身份读回匿名消息）
//
// 角色层级不参与内容可见性判定：admin 也无法读取别人的私密认可。
func IsReadable(rec *model.Recognition, viewerID string) bool {
	if rec.Visibility == model.VisibilityPublic {
		return true
	}
	if viewerID == rec.RecipientID {
		return true
	}
	if rec.SenderID != nil && viewerID == *rec.SenderID {
		return true
	}
	return false
}

// CanMutate 判断 viewer 是否可以编辑或删除该条认可
//
// 仅发送者本人可以修改。匿名消息没有已记录的发送者，任何人
// （包括原发送者与 admin）都不能修改。
func CanMutate(rec *model.Recognition, viewerID string) bool {
	return rec.SenderID != nil && viewerID == *rec.SenderID
}
