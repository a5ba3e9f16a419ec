package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/flirting-singles/party-service/internal/domain"
	"github.com/flirting-singles/party-service/internal/lobby"
	"github.com/flirting-singles/party-service/internal/security"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type ChatSvc interface {
	Save(ctx context.Context, roomID, userID, text string) (msgID string, createdAt time.Time, err error)
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	reg      *lobby.Registry
	binder   *lobby.Binder
	verifier *security.TokenVerifier
	chatSvc  ChatSvc // nil disables persistence, chat is still relayed

	pingEvery time.Duration
}

func NewServer(hub *Hub, reg *lobby.Registry, binder *lobby.Binder, verifier *security.TokenVerifier, chat ChatSvc) *Server {
	return &Server{
		hub:      hub,
		reg:      reg,
		binder:   binder,
		verifier: verifier,
		chatSvc:  chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws?access_token=...
// Identity comes from the token claims; room membership is driven by
// join_room/leave_room messages on the socket.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("access_token"))
	if token == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}
	identity, err := s.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid access_token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, identity)

	go s.writeLoop(r.Context(), c)
	s.readLoop(c)

	// disconnect: drop hub membership now, let the grace period decide
	// whether the participant actually left
	if roomID, _, ok := s.binder.Lookup(c.id); ok {
		s.hub.Leave(roomID, c.id)
	}
	s.binder.Unbind(c.id)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "user", c.UserID(), "err", err)
	}
}

func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		if roomID, userID, ok := s.binder.Lookup(c.id); ok {
			s.reg.Touch(roomID, userID)
		}
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(c, CodeInvalidPayload, "malformed message")
			continue
		}
		s.dispatch(c, msg)
	}
}

func (s *Server) dispatch(c *wsConn, msg Message) {
	switch msg.Type {
	case TypeJoinRoom:
		var p JoinRoomPayload
		if decode(msg.Payload, &p) != nil || p.Validate() != nil {
			s.sendError(c, CodeInvalidPayload, "bad join_room payload")
			return
		}
		s.handleJoin(c, p)

	case TypeLeaveRoom:
		var p LeaveRoomPayload
		if decode(msg.Payload, &p) != nil || p.Validate() != nil {
			s.sendError(c, CodeInvalidPayload, "bad leave_room payload")
			return
		}
		s.handleLeave(c, p.RoomID)

	case TypeSelectGame:
		var p SelectGamePayload
		if decode(msg.Payload, &p) != nil || p.Validate() != nil {
			s.sendError(c, CodeInvalidPayload, "bad select_game payload")
			return
		}
		s.handleSelectGame(c, p)

	case TypeKick:
		var p KickPayload
		if decode(msg.Payload, &p) != nil || p.Validate() != nil {
			s.sendError(c, CodeInvalidPayload, "bad kick payload")
			return
		}
		s.handleKick(c, p)

	case TypeSetStatus:
		var p SetStatusPayload
		if decode(msg.Payload, &p) != nil || p.Validate() != nil {
			s.sendError(c, CodeInvalidPayload, "bad set_status payload")
			return
		}
		if err := s.reg.SetStatus(p.RoomID, c.UserID(), p.Status); err != nil {
			s.sendDomainError(c, err)
		}

	case TypeChat:
		var p ChatPayload
		if decode(msg.Payload, &p) != nil || p.Validate() != nil {
			s.sendError(c, CodeInvalidPayload, "bad chat payload")
			return
		}
		s.handleChat(c, p)

	default:
		s.sendError(c, CodeInvalidPayload, "unknown message type "+msg.Type)
	}
}

func (s *Server) handleJoin(c *wsConn, p JoinRoomPayload) {
	// moving to another room leaves the old one first
	if prevRoom, prevUser, ok := s.binder.Lookup(c.id); ok {
		if prevRoom == p.RoomID {
			// idempotent rejoin, refresh the connection ref below
		} else {
			s.hub.Leave(prevRoom, c.id)
			s.binder.Drop(c.id)
			_ = s.reg.Leave(prevRoom, prevUser)
		}
	}

	snap, err := s.reg.Join(p.RoomID, domain.Participant{
		UserID:      c.identity.UserID,
		DisplayName: c.identity.DisplayName,
		AvatarURL:   c.identity.AvatarURL,
		ConnID:      c.id,
	})
	if err != nil {
		s.sendDomainError(c, err)
		return
	}

	if displaced := s.binder.Bind(c.id, c.identity.UserID, snap.RoomID); displaced != "" {
		// a superseded connection must stop receiving room traffic
		s.hub.Leave(snap.RoomID, displaced)
	}
	s.hub.Join(snap.RoomID, c)

	// the broadcast above ran before this connection entered the hub,
	// so hand the fresh snapshot to the joiner directly
	_ = c.Send(Message{Type: TypeRoomSnapshot, Payload: toSnapshotPayload(snap)})
}

func (s *Server) handleLeave(c *wsConn, roomID string) {
	boundRoom, userID, ok := s.binder.Lookup(c.id)
	if !ok || boundRoom != roomID {
		s.sendError(c, CodeNotInRoom, "not joined to room "+roomID)
		return
	}
	s.hub.Leave(roomID, c.id)
	s.binder.Drop(c.id)
	if err := s.reg.Leave(roomID, userID); err != nil {
		s.sendDomainError(c, err)
	}
}

func (s *Server) handleSelectGame(c *wsConn, p SelectGamePayload) {
	if _, err := s.reg.SelectGame(p.RoomID, c.UserID(), p.GameID); err != nil {
		// permission and validation failures go to the requester only
		s.sendDomainError(c, err)
	}
}

func (s *Server) handleKick(c *wsConn, p KickPayload) {
	connID, err := s.reg.Kick(p.RoomID, c.UserID(), p.UserID)
	if err != nil {
		s.sendDomainError(c, err)
		return
	}
	if boundConn := s.binder.DropUser(p.RoomID, p.UserID); boundConn != "" {
		connID = boundConn
	}
	if connID != "" {
		s.hub.SendTo(p.RoomID, connID, Message{
			Type:    TypeKicked,
			Payload: KickedPayload{RoomID: p.RoomID},
		})
		s.hub.Leave(p.RoomID, connID)
	}
}

func (s *Server) handleChat(c *wsConn, p ChatPayload) {
	boundRoom, userID, ok := s.binder.Lookup(c.id)
	if !ok || boundRoom != p.RoomID {
		s.sendError(c, CodeNotInRoom, "not joined to room "+p.RoomID)
		return
	}
	text := strings.TrimSpace(p.Message)

	var (
		msgID string
		ts    time.Time
	)
	if s.chatSvc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		id, createdAt, err := s.chatSvc.Save(ctx, p.RoomID, userID, text)
		cancel()
		if err != nil {
			slog.Warn("chat save failed", "room", p.RoomID, "user", userID, "err", err)
			ts = time.Now()
		} else {
			msgID, ts = id, createdAt
		}
	} else {
		msgID, ts = uuid.New().String(), time.Now()
	}

	// one broadcast to everyone, sender included
	s.hub.Broadcast(p.RoomID, Message{Type: TypeChat, Payload: ChatPayload{
		RoomID:  p.RoomID,
		UserID:  userID,
		Message: text,
		MsgID:   msgID,
		TSUnix:  ts.Unix(),
	}})
	if msgID != "" {
		_ = c.Send(Message{Type: TypeChatAck, Payload: ChatAckPayload{MsgID: msgID}})
	}
}

// writeLoop is the only goroutine writing to the socket: it drains the
// outbound queue and keeps the ping cadence.
func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func (s *Server) sendError(c *wsConn, code, message string) {
	_ = c.Send(Message{Type: TypeError, Payload: ErrorPayload{Code: code, Message: message}})
}

func (s *Server) sendDomainError(c *wsConn, err error) {
	code := CodeInternal
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		code = CodeRoomNotFound
	case errors.Is(err, domain.ErrRoomFull):
		code = CodeRoomFull
	case errors.Is(err, domain.ErrNotHost):
		code = CodeNotHost
	case errors.Is(err, domain.ErrInvalidGameSelection):
		code = CodeInvalidGameSelection
	case errors.Is(err, domain.ErrNotInRoom):
		code = CodeNotInRoom
	}
	s.sendError(c, code, err.Error())
}

// --- connection ---

const sendBufferSize = 32

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

type wsConn struct {
	conn     *websocket.Conn
	id       string
	identity security.Identity
	out      chan Message
	closed   chan struct{}
}

func newWsConn(c *websocket.Conn, identity security.Identity) *wsConn {
	return &wsConn{
		conn:     c,
		id:       uuid.New().String(),
		identity: identity,
		out:      make(chan Message, sendBufferSize),
		closed:   make(chan struct{}),
	}
}

// Send enqueues without blocking. A consumer that cannot keep up loses
// messages rather than stalling the room it shares with others; the
// next snapshot restores its view.
func (c *wsConn) Send(msg Message) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}
	select {
	case c.out <- msg:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string     { return c.id }
func (c *wsConn) UserID() string { return c.identity.UserID }
