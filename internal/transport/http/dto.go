package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type RoomItem struct {
	RoomID       string `json:"room_id"`
	HostID       string `json:"host_id"`
	Status       string `json:"status"`
	SelectedGame string `json:"selected_game,omitempty"`
	Players      int    `json:"players"`
}

type RoomsListResponse struct {
	Items []RoomItem `json:"items"`
}

type RoomDetail struct {
	RoomID             string            `json:"room_id"`
	HostID             string            `json:"host_id"`
	Status             string            `json:"status"`
	SelectedGame       string            `json:"selected_game,omitempty"`
	CountdownRemaining *int              `json:"countdown_remaining,omitempty"`
	Participants       []ParticipantItem `json:"participants"`
}

type ParticipantItem struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Status      string    `json:"status,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
	LastSeen    time.Time `json:"last_seen"`
}

type GameItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MinPlayers int    `json:"min_players"`
	MaxPlayers int    `json:"max_players"`
}

type GamesListResponse struct {
	Items []GameItem `json:"items"`
}

type ChatMessageItem struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Items      []ChatMessageItem `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type SessionItem struct {
	ID         string     `json:"id"`
	RoomID     string     `json:"room_id"`
	GameID     string     `json:"game_id"`
	HostID     string     `json:"host_id"`
	Players    int        `json:"players"`
	LaunchedAt time.Time  `json:"launched_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type SessionsListResponse struct {
	Items      []SessionItem `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
