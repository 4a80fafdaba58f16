package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gamelink-suite/utils/oauth"
)

// ProjectRepository edits games.oauth_scopes on behalf of the owning developer.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetProjectScopes(ctx context.Context, projectID, developerID string) (oauth.ScopeSet, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT oauth_scopes FROM games WHERE id::text = $1 AND developer_id::text = $2`,
		projectID, developerID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oauth.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query project scopes: %w", err)
	}
	scopes, present, err := parseScopeColumn(raw)
	if err != nil {
		return nil, fmt.Errorf("games.oauth_scopes: %w", err)
	}
	if !present {
		return oauth.ScopeSet{}, nil
	}
	return scopes, nil
}

func (r *ProjectRepository) SetProjectScopes(ctx context.Context, projectID, developerID string, scopes oauth.ScopeSet) error {
	encoded, err := encodeScopeColumn(scopes)
	if err != nil {
		return fmt.Errorf("encode scopes: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE games SET oauth_scopes = $1::jsonb WHERE id::text = $2 AND developer_id::text = $3`,
		encoded, projectID, developerID,
	)
	if err != nil {
		return fmt.Errorf("update project scopes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project scopes: %w", err)
	}
	if n == 0 {
		return oauth.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) ProjectAPIKeys(ctx context.Context, projectID, developerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT k.api_key
		FROM games g
		LEFT JOIN api_keys k ON k.game_id = g.id
		WHERE g.id::text = $1 AND g.developer_id::text = $2
		ORDER BY k.api_key`,
		projectID, developerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query project api keys: %w", err)
	}
	defer rows.Close()

	found := false
	keys := []string{}
	for rows.Next() {
		found = true
		var key sql.NullString
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan project api key: %w", err)
		}
		if key.Valid {
			keys = append(keys, key.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query project api keys: %w", err)
	}
	if !found {
		return nil, oauth.ErrProjectNotFound
	}
	return keys, nil
}
