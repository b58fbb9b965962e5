package repository

import (
	"context"
	"database/sql"

	"kudos-admin/internal/shared/model"
)

const userColumns = `id, email, display_name, password_hash, role, team_id, created_at`

// CreateUser 创建用户
func (r *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO users (id, email, display_name, password_hash, role, team_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`),
		user.ID, user.Email, user.DisplayName, user.PasswordHash,
		user.Role, user.TeamID, user.CreatedAt,
	)
	return err
}

// GetUserByEmail 通过邮箱查找用户
func (r *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users WHERE email = $1`), email,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
		&user.Role, &user.TeamID, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// GetUserByID 通过 ID 查找用户
func (r *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users WHERE id = $1`), id,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
		&user.Role, &user.TeamID, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// UpdateUserPassword 更新用户密码
func (r *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE users SET password_hash = $1 WHERE id = $2`),
		passwordHash, id,
	)
	return err
}

// ListUsers 列出所有用户
func (r *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	return r.queryUsers(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`))
}

// ListTeamMembers 列出团队成员
func (r *Store) ListTeamMembers(ctx context.Context, teamID string) ([]*model.User, error) {
	return r.queryUsers(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users WHERE team_id = $1 ORDER BY created_at DESC`), teamID)
}

func (r *Store) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash,
			&u.Role, &u.TeamID, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
