package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flirting-singles/party-service/internal/lobby"
	"github.com/flirting-singles/party-service/internal/security"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct{}

func (stubCatalog) Get(gameID string) (lobby.GameInfo, bool) {
	if gameID != "bingo" {
		return lobby.GameInfo{}, false
	}
	return lobby.GameInfo{ID: "bingo", MinPlayers: 2, MaxPlayers: 50}, true
}

func newTestStack(t *testing.T) (*httptest.Server, *security.TokenVerifier) {
	t.Helper()

	hub := NewHub()
	reg := lobby.NewRegistry(stubCatalog{}, NewNotifier(hub), nil, lobby.Config{
		CountdownStart: 2,
		TickInterval:   10 * time.Millisecond,
		GracePeriod:    20 * time.Millisecond,
	})
	binder := lobby.NewBinder(reg)
	verifier := security.NewTokenVerifier("test-secret", "test")
	server := NewServer(hub, reg, binder, verifier, nil)

	srv := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	t.Cleanup(srv.Close)
	return srv, verifier
}

func dial(t *testing.T, srv *httptest.Server, verifier *security.TokenVerifier, userID, name string) *websocket.Conn {
	t.Helper()

	token, err := verifier.Sign(security.Identity{UserID: userID, DisplayName: name}, time.Minute)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?access_token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type rawMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readUntil skips unrelated events (snapshots interleave with ticks)
// until the wanted type arrives or the deadline hits.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) json.RawMessage {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg rawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == msgType {
			return msg.Payload
		}
	}
	t.Fatalf("no %s message before deadline", msgType)
	return nil
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Message{Type: msgType, Payload: payload}))
}

func TestHandleWS_RejectsMissingToken(t *testing.T) {
	srv, _ := newTestStack(t)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJoin_DeliversSnapshotToJoiner(t *testing.T) {
	srv, verifier := newTestStack(t)
	alice := dial(t, srv, verifier, "alice", "Alice")

	send(t, alice, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})

	var snap SnapshotPayload
	require.NoError(t, json.Unmarshal(readUntil(t, alice, TypeRoomSnapshot), &snap))
	assert.Equal(t, "r1", snap.RoomID)
	assert.Equal(t, "alice", snap.HostID)
	assert.Equal(t, "waiting", snap.Status)
	require.Len(t, snap.Participants, 1)
	assert.Equal(t, "Alice", snap.Participants[0].DisplayName)
}

func TestSelectGame_NonHostGetsErrorOnly(t *testing.T) {
	srv, verifier := newTestStack(t)
	alice := dial(t, srv, verifier, "alice", "Alice")
	bob := dial(t, srv, verifier, "bob", "Bob")

	send(t, alice, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, alice, TypeRoomSnapshot)
	send(t, bob, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, bob, TypeRoomSnapshot)

	send(t, bob, TypeSelectGame, SelectGamePayload{RoomID: "r1", GameID: "bingo"})

	var errPayload ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeError), &errPayload))
	assert.Equal(t, CodeNotHost, errPayload.Code)
}

func TestCountdown_LaunchReachesAllParticipants(t *testing.T) {
	srv, verifier := newTestStack(t)
	alice := dial(t, srv, verifier, "alice", "Alice")
	bob := dial(t, srv, verifier, "bob", "Bob")

	send(t, alice, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, alice, TypeRoomSnapshot)
	send(t, bob, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, bob, TypeRoomSnapshot)

	send(t, alice, TypeSelectGame, SelectGamePayload{RoomID: "r1", GameID: "bingo"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		var launch GameLaunchPayload
		require.NoError(t, json.Unmarshal(readUntil(t, conn, TypeGameLaunch), &launch))
		assert.Equal(t, "bingo", launch.GameID)
		assert.Equal(t, "r1", launch.RoomID)
	}
}

func TestKick_TargetIsNotified(t *testing.T) {
	srv, verifier := newTestStack(t)
	alice := dial(t, srv, verifier, "alice", "Alice")
	bob := dial(t, srv, verifier, "bob", "Bob")

	send(t, alice, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, alice, TypeRoomSnapshot)
	send(t, bob, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, bob, TypeRoomSnapshot)

	send(t, alice, TypeKick, KickPayload{RoomID: "r1", UserID: "bob"})

	var kicked KickedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeKicked), &kicked))
	assert.Equal(t, "r1", kicked.RoomID)
}

func TestChat_RelayedWithoutPersistence(t *testing.T) {
	srv, verifier := newTestStack(t)
	alice := dial(t, srv, verifier, "alice", "Alice")
	bob := dial(t, srv, verifier, "bob", "Bob")

	send(t, alice, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, alice, TypeRoomSnapshot)
	send(t, bob, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, bob, TypeRoomSnapshot)

	send(t, alice, TypeChat, ChatPayload{RoomID: "r1", Message: "hey there"})

	var chat ChatPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeChat), &chat))
	assert.Equal(t, "alice", chat.UserID)
	assert.Equal(t, "hey there", chat.Message)
	assert.NotEmpty(t, chat.MsgID)
}

func TestDuplicateLogin_EvictsStaleConn(t *testing.T) {
	srv, verifier := newTestStack(t)
	first := dial(t, srv, verifier, "alice", "Alice")
	second := dial(t, srv, verifier, "alice", "Alice")

	send(t, first, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, first, TypeRoomSnapshot)
	send(t, second, TypeJoinRoom, JoinRoomPayload{RoomID: "r1"})
	readUntil(t, second, TypeRoomSnapshot)

	// the takeover connection owns the room now
	send(t, second, TypeChat, ChatPayload{RoomID: "r1", Message: "still here"})
	readUntil(t, second, TypeChat)

	// the superseded socket must not keep receiving room traffic
	for {
		_ = first.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
		var msg rawMessage
		if err := first.ReadJSON(&msg); err != nil {
			break
		}
		require.NotEqual(t, TypeChat, msg.Type, "stale connection still in the room fan-out")
	}
}

func TestSend_DoesNotBlockOnSlowConsumer(t *testing.T) {
	c := newWsConn(nil, security.Identity{UserID: "u1"})

	// nothing drains the queue; enqueueing past capacity must fail
	// fast instead of stalling the caller
	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, c.Send(Message{Type: TypeCountdownTick}))
	}
	assert.ErrorIs(t, c.Send(Message{Type: TypeCountdownTick}), errSendBufferFull)

	close(c.closed)
	assert.ErrorIs(t, c.Send(Message{Type: TypeCountdownTick}), errConnClosed)
}

func TestUnknownType_GetsInvalidPayload(t *testing.T) {
	srv, verifier := newTestStack(t)
	alice := dial(t, srv, verifier, "alice", "Alice")

	send(t, alice, "teleport", nil)

	var errPayload ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, alice, TypeError), &errPayload))
	assert.Equal(t, CodeInvalidPayload, errPayload.Code)
}
