package models

// SessionMode is how the current visitor is identified
type SessionMode string

const (
	SessionAuthenticated SessionMode = "authenticated"
	SessionAnonymous     SessionMode = "anonymous"
	SessionGuest         SessionMode = "guest"
)

// Session identifies who a data operation acts for. It is passed explicitly
// to every service call instead of living in package state.
type Session struct {
	UserID string
	Mode   SessionMode
}

// Persistent reports whether writes for this session reach the store.
// Guest sessions use a throwaway id and never do.
func (s Session) Persistent() bool {
	return s.UserID != "" && s.Mode != SessionGuest
}
