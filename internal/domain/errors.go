package domain

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomFull             = errors.New("room is full")
	ErrNotInRoom            = errors.New("user not in the room")
	ErrNotHost              = errors.New("only the host may do this")
	ErrInvalidGameSelection = errors.New("invalid game selection")
)
