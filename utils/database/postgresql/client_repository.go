package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gamelink-suite/utils/oauth"
)

// ClientRepository resolves API keys against the games and api_keys tables.
type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) ValidateAPIKey(ctx context.Context, apiKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM api_keys WHERE api_key = $1 AND is_active = TRUE)`,
		apiKey,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query api key: %w", err)
	}
	return exists, nil
}

// ResolveClient prefers the game's oauth_scopes, then the key's permissions.
func (r *ClientRepository) ResolveClient(ctx context.Context, apiKey string) (*oauth.ClientInfo, error) {
	var (
		name        string
		imageURL    sql.NullString
		gameScopes  []byte
		permissions []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT g.name, g.image_url, g.oauth_scopes, k.permissions
		FROM api_keys k
		JOIN games g ON g.id = k.game_id
		WHERE k.api_key = $1 AND k.is_active = TRUE`,
		apiKey,
	).Scan(&name, &imageURL, &gameScopes, &permissions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oauth.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query client: %w", err)
	}

	scopes, err := resolveAllowedScopes(gameScopes, permissions)
	if err != nil {
		return nil, fmt.Errorf("client %q: %w", name, err)
	}
	return &oauth.ClientInfo{
		Name:          name,
		Logo:          imageURL.String,
		AllowedScopes: scopes,
	}, nil
}

func resolveAllowedScopes(gameScopes, permissions []byte) (oauth.ScopeSet, error) {
	scopes, present, err := parseScopeColumn(gameScopes)
	if err != nil {
		return nil, fmt.Errorf("games.oauth_scopes: %w", err)
	}
	if present {
		return scopes, nil
	}
	scopes, present, err = parseScopeColumn(permissions)
	if err != nil {
		return nil, fmt.Errorf("api_keys.permissions: %w", err)
	}
	if present {
		return scopes, nil
	}
	return oauth.ScopeSet{}, nil
}
