package redis

import "fmt"

const (
	KeyPrefixGameLink = "gamelink"

	KeyModuleOAuth   = "oauth"
	KeyActionRequest = "request"
	KeyActionAccess  = "access"
	KeyActionGrant   = "grant"
	KeyModuleSession = "session"
)

func BuildOAuthRequestTokenKey(token string) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefixGameLink, KeyModuleOAuth, KeyActionRequest, token)
}

func BuildOAuthAccessTokenKey(token string) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefixGameLink, KeyModuleOAuth, KeyActionAccess, token)
}

// BuildOAuthGrantIndexKey length-prefixes apiKey so no two (apiKey, userID)
// pairs share a key.
func BuildOAuthGrantIndexKey(apiKey, userID string) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s:%s", KeyPrefixGameLink, KeyModuleOAuth, KeyActionGrant, len(apiKey), apiKey, userID)
}

func BuildSessionKey(userID, sessionToken string) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefixGameLink, KeyModuleSession, userID, sessionToken)
}
