package ws

import (
	"encoding/json"
	"errors"
	"strings"
)

// Event types on the socket.
const (
	// inbound
	TypeJoinRoom   = "join_room"
	TypeLeaveRoom  = "leave_room"
	TypeSelectGame = "select_game"
	TypeKick       = "kick"
	TypeSetStatus  = "set_status"
	TypeChat       = "chat"

	// outbound
	TypeRoomSnapshot  = "room_snapshot"
	TypeCountdownTick = "countdown_tick"
	TypeGameLaunch    = "game_launch"
	TypeChatAck       = "chat_ack"
	TypeKicked        = "kicked"
	TypeError         = "error"
)

// Error codes carried in the error payload.
const (
	CodeRoomNotFound         = "room_not_found"
	CodeRoomFull             = "room_full"
	CodeNotHost              = "not_host"
	CodeInvalidGameSelection = "invalid_game_selection"
	CodeNotInRoom            = "not_in_room"
	CodeInvalidPayload       = "invalid_payload"
	CodeInternal             = "internal"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

var errInvalidPayload = errors.New("invalid payload")

// --- inbound ---

type JoinRoomPayload struct {
	RoomID string `json:"room_id"` // empty asks for a fresh room
}

func (p JoinRoomPayload) Validate() error {
	if len(p.RoomID) > 64 {
		return errInvalidPayload
	}
	return nil
}

type LeaveRoomPayload struct {
	RoomID string `json:"room_id"`
}

func (p LeaveRoomPayload) Validate() error {
	if p.RoomID == "" {
		return errInvalidPayload
	}
	return nil
}

type SelectGamePayload struct {
	RoomID string `json:"room_id"`
	GameID string `json:"game_id"`
}

func (p SelectGamePayload) Validate() error {
	if p.RoomID == "" || p.GameID == "" {
		return errInvalidPayload
	}
	return nil
}

type KickPayload struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

func (p KickPayload) Validate() error {
	if p.RoomID == "" || p.UserID == "" {
		return errInvalidPayload
	}
	return nil
}

type SetStatusPayload struct {
	RoomID string `json:"room_id"`
	Status string `json:"status"`
}

func (p SetStatusPayload) Validate() error {
	if p.RoomID == "" || len(p.Status) > 64 {
		return errInvalidPayload
	}
	return nil
}

type ChatPayload struct {
	RoomID  string `json:"room_id"`
	UserID  string `json:"user_id,omitempty"`
	Message string `json:"message"`

	MsgID  string `json:"msg_id,omitempty"`
	TSUnix int64  `json:"ts_unix,omitempty"`
}

func (p ChatPayload) Validate() error {
	if p.RoomID == "" || strings.TrimSpace(p.Message) == "" {
		return errInvalidPayload
	}
	return nil
}

// --- outbound ---

type SnapshotPayload struct {
	RoomID             string            `json:"room_id"`
	HostID             string            `json:"host_id"`
	Status             string            `json:"status"`
	SelectedGame       string            `json:"selected_game,omitempty"`
	Participants       []ParticipantItem `json:"participants"`
	CountdownRemaining *int              `json:"countdown_remaining,omitempty"`
}

type ParticipantItem struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Status      string `json:"status,omitempty"`
	JoinedAt    int64  `json:"joined_at_unix"`
	LastSeen    int64  `json:"last_seen_unix"`
}

type CountdownTickPayload struct {
	RoomID    string `json:"room_id"`
	Remaining int    `json:"remaining"`
}

type GameLaunchPayload struct {
	RoomID string `json:"room_id"`
	GameID string `json:"game_id"`
}

type ChatAckPayload struct {
	MsgID string `json:"msg_id"`
}

type KickedPayload struct {
	RoomID string `json:"room_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decode re-marshals a loosely typed payload into its concrete shape.
func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
