package repository

import (
	"context"
	"database/sql"

	"kudos-admin/internal/shared/model"
)

// CreateTeam 创建团队
func (r *Store) CreateTeam(ctx context.Context, team *model.Team) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO teams (id, name, description, created_at) VALUES ($1, $2, $3, $4)`),
		team.ID, team.Name, team.Description, team.CreatedAt,
	)
	return err
}

// GetTeam 通过 ID 查找团队
func (r *Store) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	team := &model.Team{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT id, name, description, created_at FROM teams WHERE id = $1`), id,
	).Scan(&team.ID, &team.Name, &description, &team.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	team.Description = description.String
	return team, err
}

// ListTeams 列出所有团队
func (r *Store) ListTeams(ctx context.Context) ([]*model.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM teams ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []*model.Team{}
	for rows.Next() {
		t := &model.Team{}
		var description sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &description, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Description = description.String
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
