package mongostore

import (
	"context"

	"kudos-admin/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CreateTeam 创建团队
func (s *Store) CreateTeam(ctx context.Context, team *model.Team) error {
	return insertOne(ctx, s.col(ColTeams), team)
}

// GetTeam 通过 ID 查找团队
func (s *Store) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	return findOne[model.Team](ctx, s.col(ColTeams), bson.D{{Key: "_id", Value: id}})
}

// ListTeams 列出所有团队
func (s *Store) ListTeams(ctx context.Context) ([]*model.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Team](ctx, s.col(ColTeams), bson.D{}, opts)
}
