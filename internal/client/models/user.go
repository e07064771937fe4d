package models

// UnsignedUser is the collection bucket used when no account is logged in.
const UnsignedUser = "unsigned"

// User mirrors the backend's user object as persisted under the
// "currentUser" storage key.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
}

// Key returns the identifier under which this user's reminders are stored:
// the account id when present, otherwise the username.
func (u User) Key() string {
	if u.ID != "" {
		return u.ID
	}
	return u.Username
}

// Session is the current authentication state as read from local storage.
// The zero value is the anonymous ("unsigned") session.
type Session struct {
	User  *User
	Token string
}

// UserKey returns the collection bucket for this session.
func (s Session) UserKey() string {
	if s.User == nil {
		return UnsignedUser
	}
	return s.User.Key()
}

// Authenticated reports whether the session belongs to a signed-in account
// holding a bearer token. Only authenticated sessions talk to the backend.
func (s Session) Authenticated() bool {
	return s.User != nil && s.UserKey() != UnsignedUser && s.Token != ""
}
