package authz

import "fmt"

// Identity is the authenticated caller of a request.
// The zero value is the anonymous identity.
type Identity struct {
	UserID          uint
	Username        string
	Age             *int
	CanBeContacted  bool
	CanDataBeShared bool
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{}
}

// IsAuthenticated reports whether the identity refers to a stored user.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}

// String returns a stable representation for logs.
func (i Identity) String() string {
	if !i.IsAuthenticated() {
		return "anonymous"
	}
	return fmt.Sprintf("user:%d", i.UserID)
}
