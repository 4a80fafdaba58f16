// Package oauthtest provides in-memory collaborators for exercising the
// delegated authorization flow in tests.
package oauthtest

import (
	"context"
	"sync"
	"time"

	"gamelink-suite/utils/oauth"
)

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type clientEntry struct {
	info   oauth.ClientInfo
	active bool
}

// ClientDirectory is a mutable oauth.ClientDirectory keyed by API key.
type ClientDirectory struct {
	mu      sync.RWMutex
	clients map[string]*clientEntry
	Err     error
}

func NewClientDirectory() *ClientDirectory {
	return &ClientDirectory{clients: make(map[string]*clientEntry)}
}

func (d *ClientDirectory) AddClient(apiKey, name, logo string, scopes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[apiKey] = &clientEntry{
		info:   oauth.ClientInfo{Name: name, Logo: logo, AllowedScopes: oauth.ScopeSet(scopes).Clone()},
		active: true,
	}
}

// SetScopes replaces the allowed scopes, as a developer editing settings would.
func (d *ClientDirectory) SetScopes(apiKey string, scopes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.clients[apiKey]; ok {
		e.info.AllowedScopes = oauth.ScopeSet(scopes).Clone()
	}
}

func (d *ClientDirectory) Deactivate(apiKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.clients[apiKey]; ok {
		e.active = false
	}
}

func (d *ClientDirectory) ValidateAPIKey(_ context.Context, apiKey string) (bool, error) {
	if d.Err != nil {
		return false, d.Err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.clients[apiKey]
	return ok && e.active, nil
}

func (d *ClientDirectory) ResolveClient(_ context.Context, apiKey string) (*oauth.ClientInfo, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.clients[apiKey]
	if !ok || !e.active {
		return nil, oauth.ErrClientNotFound
	}
	info := e.info
	info.AllowedScopes = e.info.AllowedScopes.Clone()
	return &info, nil
}

// UserDirectory is a fixed oauth.UserDirectory.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]oauth.User
}

func NewUserDirectory(users ...oauth.User) *UserDirectory {
	d := &UserDirectory{users: make(map[string]oauth.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *UserDirectory) Delete(id string) {
	d.mu.Lock()
	delete(d.users, id)
	d.mu.Unlock()
}

func (d *UserDirectory) GetUserByID(_ context.Context, id string) (*oauth.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, oauth.ErrUserNotFound
	}
	return &u, nil
}

// Recorder collects grant events.
type Recorder struct {
	mu     sync.Mutex
	events []oauth.GrantEvent
	Err    error
}

func (r *Recorder) RecordGrantEvent(_ context.Context, event oauth.GrantEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// ListGrantEvents filters the recorded events the way the MongoDB log does.
func (r *Recorder) ListGrantEvents(_ context.Context, apiKey, userID string, limit int64) ([]oauth.GrantEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []oauth.GrantEvent{}
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if e.APIKey != apiKey || (userID != "" && e.UserID != userID) {
			continue
		}
		out = append(out, e)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (r *Recorder) Events() []oauth.GrantEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]oauth.GrantEvent, len(r.events))
	copy(out, r.events)
	return out
}

type project struct {
	developerID string
	apiKeys     []string
	scopes      oauth.ScopeSet
}

// ProjectDirectory edits client scopes through the owning project, keeping a
// ClientDirectory in sync.
type ProjectDirectory struct {
	mu       sync.Mutex
	clients  *ClientDirectory
	projects map[string]*project
}

func NewProjectDirectory(clients *ClientDirectory) *ProjectDirectory {
	return &ProjectDirectory{clients: clients, projects: make(map[string]*project)}
}

func (d *ProjectDirectory) AddProject(projectID, developerID string, scopes []string, apiKeys ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projects[projectID] = &project{
		developerID: developerID,
		apiKeys:     apiKeys,
		scopes:      oauth.ScopeSet(scopes).Clone(),
	}
}

func (d *ProjectDirectory) GetProjectScopes(_ context.Context, projectID, developerID string) (oauth.ScopeSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.projects[projectID]
	if !ok || p.developerID != developerID {
		return nil, oauth.ErrProjectNotFound
	}
	return p.scopes.Clone(), nil
}

func (d *ProjectDirectory) SetProjectScopes(_ context.Context, projectID, developerID string, scopes oauth.ScopeSet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.projects[projectID]
	if !ok || p.developerID != developerID {
		return oauth.ErrProjectNotFound
	}
	p.scopes = scopes.Clone()
	for _, key := range p.apiKeys {
		d.clients.SetScopes(key, scopes...)
	}
	return nil
}

func (d *ProjectDirectory) ProjectAPIKeys(_ context.Context, projectID, developerID string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.projects[projectID]
	if !ok || p.developerID != developerID {
		return nil, oauth.ErrProjectNotFound
	}
	return append([]string{}, p.apiKeys...), nil
}
