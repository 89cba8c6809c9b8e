package domain

import "time"

// Session is what the app knows about a signed in user. The token itself
// stays with the auth provider.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

func (s Session) Valid(now time.Time) bool {
	return s.UserID != "" && now.Before(s.ExpiresAt)
}
