package domain

// Scope is the resolved caller of an operation.
// Every store call receives one explicitly; nothing reads identity from globals.
type Scope struct {
	UserID string
}

// ScopeFor returns the scope of the given user.
func ScopeFor(userID string) Scope { return Scope{UserID: userID} }

// Anonymous reports whether no user was resolved for the request.
func (s Scope) Anonymous() bool { return s.UserID == "" }

// Require fails with an auth error for anonymous scopes.
func (s Scope) Require() error {
	if s.Anonymous() {
		return Unauthorized()
	}
	return nil
}

// RequireOwns is the single ownership gate used by every mutation.
// Missing and foreign rows look the same to the caller.
func RequireOwns(ownerID string, s Scope) bool {
	return !s.Anonymous() && ownerID != "" && ownerID == s.UserID
}
