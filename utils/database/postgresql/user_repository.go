package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gamelink-suite/utils/oauth"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*oauth.User, error) {
	var (
		u                       oauth.User
		email, username, avatar sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id::text, email, username, avatar_url FROM users WHERE id::text = $1`,
		id,
	).Scan(&u.ID, &email, &username, &avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oauth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Email = email.String
	u.Username = username.String
	u.Avatar = avatar.String
	return &u, nil
}
