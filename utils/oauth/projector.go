package oauth

// UserProjection is the subset of a user record a grant may see.
type UserProjection map[string]string

// ProjectUser always exposes the id and adds one field per recognised scope.
// Fields without a granted scope are left out entirely.
func ProjectUser(u *User, scopes ScopeSet) UserProjection {
	p := UserProjection{"id": u.ID}
	if scopes.Contains(ScopeEmail) {
		p["email"] = u.Email
	}
	if scopes.Contains(ScopeUsername) {
		p["username"] = u.Username
	}
	if scopes.Contains(ScopeAvatar) {
		p["avatar"] = u.Avatar
	}
	return p
}
