package oauth

// ====================== Request Struct ======================

type RequestTokenPayload struct {
	APIKey string   `json:"apiKey" form:"apiKey"`
	Scopes []string `json:"scopes" form:"scopes"`
}

type RequestTokenBody struct {
	RequestToken string `json:"request_token" form:"request_token"`
}

// ====================== Response Struct ======================

type RequestTokenResponse struct {
	RequestToken string `json:"request_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthorizeResponse struct {
	Success bool `json:"success"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type GameInfoResponse struct {
	Name   string   `json:"name"`
	Logo   string   `json:"logo"`
	Scopes []string `json:"scopes"`
}

type CheckResponse struct {
	AccessToken   string   `json:"access_token"`
	AllowedScopes []string `json:"allowedScopes"`
	CreatedAt     int64    `json:"createdAt"`
}

type UserDataResponse struct {
	User map[string]string `json:"user"`
}

type RequestInfoGame struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type RequestInfoResponse struct {
	Game              RequestInfoGame `json:"game"`
	Scopes            []string        `json:"scopes"`
	ScopeDescriptions []string        `json:"scope_descriptions"`
	ExpiresIn         int             `json:"expires_in"`
}
