package ws

import "github.com/flirting-singles/party-service/internal/lobby"

// Notifier adapts the hub to lobby.Notifier: every registry change is
// fanned out to the room's connections as a typed message.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) RoomSnapshot(snap lobby.Snapshot) {
	n.hub.Broadcast(snap.RoomID, Message{
		Type:    TypeRoomSnapshot,
		Payload: toSnapshotPayload(snap),
	})
}

func (n *Notifier) CountdownTick(roomID string, remaining int) {
	n.hub.Broadcast(roomID, Message{
		Type:    TypeCountdownTick,
		Payload: CountdownTickPayload{RoomID: roomID, Remaining: remaining},
	})
}

func (n *Notifier) GameLaunch(roomID, gameID string) {
	n.hub.Broadcast(roomID, Message{
		Type:    TypeGameLaunch,
		Payload: GameLaunchPayload{RoomID: roomID, GameID: gameID},
	})
}

func toSnapshotPayload(snap lobby.Snapshot) SnapshotPayload {
	p := SnapshotPayload{
		RoomID:             snap.RoomID,
		HostID:             snap.HostID,
		Status:             string(snap.Status),
		SelectedGame:       snap.SelectedGame,
		Participants:       make([]ParticipantItem, 0, len(snap.Participants)),
		CountdownRemaining: snap.CountdownRemaining,
	}
	for _, pt := range snap.Participants {
		p.Participants = append(p.Participants, ParticipantItem{
			UserID:      pt.UserID,
			DisplayName: pt.DisplayName,
			AvatarURL:   pt.AvatarURL,
			Status:      pt.Status,
			JoinedAt:    pt.JoinedAt.Unix(),
			LastSeen:    pt.LastSeen.Unix(),
		})
	}
	return p
}
