package lobby

// Notifier pushes room events to every connection currently bound to
// the room. Delivery is best-effort per connection; request-scoped
// errors never go through here, they are returned to the caller.
type Notifier interface {
	RoomSnapshot(snap Snapshot)
	CountdownTick(roomID string, remaining int)
	GameLaunch(roomID, gameID string)
}

// Recorder observes launches and finishes for the played-sessions
// history. A nil Recorder disables recording.
type Recorder interface {
	RecordLaunch(roomID, gameID, hostID string, players int)
	RecordFinish(roomID string)
}

// Catalog resolves a game id to its player bounds.
type Catalog interface {
	Get(gameID string) (GameInfo, bool)
}

// GameInfo is the slice of a catalog entry the registry needs.
type GameInfo struct {
	ID         string
	MinPlayers int
	MaxPlayers int
}
