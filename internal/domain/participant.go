package domain

import "time"

// Participant is a user currently inside a room. ConnID points at the
// live transport connection; a reconnect replaces it in place instead
// of duplicating the participant.
type Participant struct {
	UserID      string
	DisplayName string
	AvatarURL   string
	ConnID      string
	Status      string // free-text readiness marker, e.g. "ready"
	JoinedAt    time.Time
	LastSeen    time.Time
}
