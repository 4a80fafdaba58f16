package oauth

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	ScopeEmail    = "email"
	ScopeUsername = "username"
	ScopeAvatar   = "avatar"
	ScopeWallet   = "wallet"
	ScopeLevel    = "level"
)

// AllScopes is the vocabulary developers may attach to a project.
var AllScopes = map[string]string{
	ScopeEmail:    "Read your email address",
	ScopeUsername: "Read your username",
	ScopeAvatar:   "Read your profile picture",
	ScopeWallet:   "Read your linked wallet address",
	ScopeLevel:    "Read your platform level",
}

var scopePattern = regexp.MustCompile(`^[a-z][a-z0-9_.:-]{0,63}$`)

// ScopeSet is an ordered, duplicate free list of scope identifiers.
type ScopeSet []string

// ParseScopeSet validates raw scope strings and returns them as a ScopeSet.
// Duplicates collapse onto their first occurrence.
func ParseScopeSet(raw []string) (ScopeSet, error) {
	set := make(ScopeSet, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		if !scopePattern.MatchString(s) {
			return nil, fmt.Errorf("malformed scope %q", s)
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		set = append(set, s)
	}
	return set, nil
}

func (s ScopeSet) Contains(scope string) bool {
	for _, v := range s {
		if v == scope {
			return true
		}
	}
	return false
}

// Missing returns the members of s that are absent from allowed, in order.
func (s ScopeSet) Missing(allowed ScopeSet) ScopeSet {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}
	var missing ScopeSet
	for _, v := range s {
		if _, ok := allowedSet[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}

func (s ScopeSet) String() string {
	return strings.Join(s, ", ")
}

// Clone returns a copy that never aliases s.
func (s ScopeSet) Clone() ScopeSet {
	if s == nil {
		return ScopeSet{}
	}
	out := make(ScopeSet, len(s))
	copy(out, s)
	return out
}

// ContainsAll reports whether requested is non-empty and every member appears in allowed.
func ContainsAll(requested, allowed ScopeSet) bool {
	if len(requested) == 0 {
		return false
	}
	return len(requested.Missing(allowed)) == 0
}

// ValidateCatalogScopes checks developer supplied scopes against AllScopes.
func ValidateCatalogScopes(raw []string) (ScopeSet, error) {
	set, err := ParseScopeSet(raw)
	if err != nil {
		return nil, err
	}
	var unknown []string
	for _, s := range set {
		if _, ok := AllScopes[s]; !ok {
			unknown = append(unknown, s)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown scopes: %s", strings.Join(unknown, ", "))
	}
	return set, nil
}

// ScopeDescriptions returns the consent screen wording for scopes, skipping
// identifiers outside AllScopes.
func ScopeDescriptions(scopes ScopeSet) []string {
	descs := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if desc, ok := AllScopes[s]; ok {
			descs = append(descs, desc)
		}
	}
	return descs
}
