package domain

import "time"

// GameSession is one played game: recorded at launch, closed at finish.
type GameSession struct {
	ID         string     `db:"id"`
	RoomID     string     `db:"room_id"`
	GameID     string     `db:"game_id"`
	HostID     string     `db:"host_id"`
	Players    int        `db:"players"`
	LaunchedAt time.Time  `db:"launched_at"`
	FinishedAt *time.Time `db:"finished_at"`
}
