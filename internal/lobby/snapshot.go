package lobby

import (
	"time"

	"github.com/flirting-singles/party-service/internal/domain"
)

// Snapshot is the consistent room view fanned out after every change.
type Snapshot struct {
	RoomID             string
	HostID             string
	Status             domain.RoomStatus
	SelectedGame       string
	Participants       []ParticipantView
	CountdownRemaining *int
}

type ParticipantView struct {
	UserID      string
	DisplayName string
	AvatarURL   string
	Status      string
	JoinedAt    time.Time
	LastSeen    time.Time
}

// caller must hold the registry mutex
func makeSnapshot(rs *roomState) Snapshot {
	room := rs.room
	snap := Snapshot{
		RoomID:       room.ID,
		HostID:       room.HostID,
		Status:       room.Status,
		SelectedGame: room.SelectedGame,
		Participants: make([]ParticipantView, 0, len(room.Participants)),
	}
	for _, p := range room.Participants {
		snap.Participants = append(snap.Participants, ParticipantView{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Status:      p.Status,
			JoinedAt:    p.JoinedAt,
			LastSeen:    p.LastSeen,
		})
	}
	if rs.countdown != nil {
		remaining := rs.countdown.remaining
		snap.CountdownRemaining = &remaining
	}
	return snap
}
