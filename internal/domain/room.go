package domain

import "time"

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusStarting RoomStatus = "starting"
	StatusActive   RoomStatus = "active"
	StatusFinished RoomStatus = "finished"
)

// Room is a named collection of participants sharing a game-selection
// lifecycle. Participants are kept in join order; host succession
// follows that order.
type Room struct {
	ID           string
	HostID       string
	Status       RoomStatus
	SelectedGame string
	Participants []*Participant
	CreatedAt    time.Time
}

func NewRoom(id string) *Room {
	return &Room{
		ID:        id,
		Status:    StatusWaiting,
		CreatedAt: time.Now(),
	}
}

func (r *Room) Participant(userID string) (*Participant, bool) {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) RemoveParticipant(userID string) bool {
	for i, p := range r.Participants {
		if p.UserID == userID {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// NextHost is the next-joined remaining participant, or "" when the
// room is empty.
func (r *Room) NextHost() string {
	if len(r.Participants) == 0 {
		return ""
	}
	return r.Participants[0].UserID
}
