package dev

type UpdateScopesPayload struct {
	Scopes []string `json:"scopes"`
}

type ProjectScopesData struct {
	Scopes    []string          `json:"scopes"`
	Available map[string]string `json:"available"`
}

type GrantEventItem struct {
	Type   string   `json:"type"`
	APIKey string   `json:"apiKey"`
	UserID string   `json:"userId,omitempty"`
	Scopes []string `json:"scopes"`
	At     int64    `json:"at"`
}

type GrantEventsData struct {
	Events []GrantEventItem `json:"events"`
}
