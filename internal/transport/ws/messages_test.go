package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RemarshalsLoosePayloads(t *testing.T) {
	// payloads arrive as map[string]any after the envelope unmarshal
	loose := map[string]any{"room_id": "r1", "game_id": "bingo"}

	var p SelectGamePayload
	require.NoError(t, decode(loose, &p))
	assert.Equal(t, "r1", p.RoomID)
	assert.Equal(t, "bingo", p.GameID)
}

func TestPayloadValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{ Validate() error }
		wantErr bool
	}{
		{"join empty room id is a create request", JoinRoomPayload{}, false},
		{"join room id too long", JoinRoomPayload{RoomID: string(make([]byte, 65))}, true},
		{"leave ok", LeaveRoomPayload{RoomID: "r1"}, false},
		{"leave missing room", LeaveRoomPayload{}, true},
		{"select ok", SelectGamePayload{RoomID: "r1", GameID: "bingo"}, false},
		{"select missing game", SelectGamePayload{RoomID: "r1"}, true},
		{"select missing room", SelectGamePayload{GameID: "bingo"}, true},
		{"kick ok", KickPayload{RoomID: "r1", UserID: "u2"}, false},
		{"kick missing target", KickPayload{RoomID: "r1"}, true},
		{"set_status ok", SetStatusPayload{RoomID: "r1", Status: "ready"}, false},
		{"set_status clears marker", SetStatusPayload{RoomID: "r1"}, false},
		{"set_status missing room", SetStatusPayload{Status: "ready"}, true},
		{"chat ok", ChatPayload{RoomID: "r1", Message: "hi"}, false},
		{"chat whitespace only", ChatPayload{RoomID: "r1", Message: "   "}, true},
		{"chat missing room", ChatPayload{Message: "hi"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
