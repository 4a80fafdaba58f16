package oauth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
)

// ClientInfo describes a registered game as seen through one of its API keys.
type ClientInfo struct {
	Name          string
	Logo          string
	AllowedScopes ScopeSet
}

// ClientDirectory validates API keys and resolves them to the owning game.
type ClientDirectory interface {
	// ValidateAPIKey is true only for an existing, active key. Unknown keys are
	// not an error.
	ValidateAPIKey(ctx context.Context, apiKey string) (bool, error)
	// ResolveClient returns ErrClientNotFound when no active key matches.
	ResolveClient(ctx context.Context, apiKey string) (*ClientInfo, error)
}

type User struct {
	ID       string
	Email    string
	Username string
	Avatar   string
}

type UserDirectory interface {
	// GetUserByID returns ErrUserNotFound for unknown ids.
	GetUserByID(ctx context.Context, id string) (*User, error)
}

type GrantEventType string

const (
	GrantEventRequest   GrantEventType = "request"
	GrantEventAuthorize GrantEventType = "authorize"
	GrantEventExchange  GrantEventType = "exchange"
)

type GrantEvent struct {
	Type   GrantEventType
	APIKey string
	UserID string
	Scopes ScopeSet
	At     time.Time
}

type GrantRecorder interface {
	RecordGrantEvent(ctx context.Context, event GrantEvent) error
}

// GrantEventLister reads the grant log back, newest first. An empty userID
// matches every user; limit <= 0 means no limit.
type GrantEventLister interface {
	ListGrantEvents(ctx context.Context, apiKey, userID string, limit int64) ([]GrantEvent, error)
}

type noopRecorder struct{}

func (noopRecorder) RecordGrantEvent(context.Context, GrantEvent) error { return nil }

// ProjectDirectory lets a developer read and edit the scopes of a game they own.
// Projects owned by someone else are reported as ErrProjectNotFound.
type ProjectDirectory interface {
	GetProjectScopes(ctx context.Context, projectID, developerID string) (ScopeSet, error)
	SetProjectScopes(ctx context.Context, projectID, developerID string, scopes ScopeSet) error
	// ProjectAPIKeys lists every key of the project, inactive ones included.
	ProjectAPIKeys(ctx context.Context, projectID, developerID string) ([]string, error)
}
