// Package model 定义核心数据模型
//
// team.go 包含团队数据模型定义。
// 团队成员关系记录在 User.TeamID 上，Team 本身不持有成员列表。
package model

import "time"

// Team 团队
type Team struct {
	ID          string    `json:"id" bson:"_id" db:"id"`
	Name        string    `json:"name" bson:"name" db:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
