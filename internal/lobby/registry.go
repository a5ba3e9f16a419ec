package lobby

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/flirting-singles/party-service/internal/domain"

	"github.com/google/uuid"
)

type Config struct {
	RoomCap        int           // hard cap per room, distinct from per-game bounds
	CountdownStart int           // seconds the launch countdown starts from
	TickInterval   time.Duration // 1s in production, shortened in tests
	GracePeriod    time.Duration // disconnect-to-leave window
}

func (c Config) withDefaults() Config {
	if c.RoomCap <= 0 {
		c.RoomCap = 64
	}
	if c.CountdownStart <= 0 {
		c.CountdownStart = 5
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 10 * time.Second
	}
	return c
}

// Registry is the single source of truth for room existence and
// membership. All state is in-memory and scoped to process lifetime;
// every mutation is serialized by one mutex, so no transition ever
// observes a half-applied change.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*roomState

	catalog  Catalog
	notifier Notifier
	recorder Recorder
	cfg      Config
}

type roomState struct {
	room      *domain.Room
	countdown *countdown
}

func NewRegistry(catalog Catalog, notifier Notifier, recorder Recorder, cfg Config) *Registry {
	return &Registry{
		rooms:    make(map[string]*roomState),
		catalog:  catalog,
		notifier: notifier,
		recorder: recorder,
		cfg:      cfg.withDefaults(),
	}
}

func (r *Registry) GracePeriod() time.Duration { return r.cfg.GracePeriod }

// Join adds the participant to the room, creating the room on first
// join. An empty roomID asks for a fresh room with a generated id.
// Rejoining with an already-present userID replaces the stale
// connection ref instead of duplicating the participant.
func (r *Registry) Join(roomID string, p domain.Participant) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if roomID == "" {
		roomID = uuid.New().String()
	}
	rs, ok := r.rooms[roomID]
	if !ok {
		rs = &roomState{room: domain.NewRoom(roomID)}
		r.rooms[roomID] = rs
		slog.Debug("room created", "room", roomID)
	}

	room := rs.room
	now := time.Now()
	if existing, ok := room.Participant(p.UserID); ok {
		// reconnect, the new connection takes over
		existing.ConnID = p.ConnID
		existing.DisplayName = p.DisplayName
		existing.AvatarURL = p.AvatarURL
		existing.LastSeen = now
	} else {
		if len(room.Participants) >= r.cfg.RoomCap {
			return Snapshot{}, domain.ErrRoomFull
		}
		// during the countdown the selected game's cap binds too,
		// otherwise a late join could push the launch over max players
		if room.Status == domain.StatusStarting {
			if game, ok := r.catalog.Get(room.SelectedGame); ok &&
				game.MaxPlayers > 0 && len(room.Participants) >= game.MaxPlayers {
				return Snapshot{}, domain.ErrRoomFull
			}
		}
		joined := p
		joined.JoinedAt = now
		joined.LastSeen = now
		room.Participants = append(room.Participants, &joined)
		if room.HostID == "" {
			room.HostID = p.UserID
		}
	}

	snap := makeSnapshot(rs)
	r.notifier.RoomSnapshot(snap)
	return snap, nil
}

// Leave removes the participant. The host role passes to the
// next-joined remaining participant; an empty room is disposed.
func (r *Registry) Leave(roomID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if !r.removeLocked(rs, userID) {
		return domain.ErrNotInRoom
	}
	return nil
}

// SelectGame is the host-only waiting -> starting transition. The
// participant count is validated against the catalog bounds before
// anything is written, so a failed request leaves the room untouched.
func (r *Registry) SelectGame(roomID, userID, gameID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return Snapshot{}, domain.ErrRoomNotFound
	}
	room := rs.room
	if room.HostID != userID {
		return Snapshot{}, domain.ErrNotHost
	}
	if room.Status != domain.StatusWaiting && room.Status != domain.StatusFinished {
		return Snapshot{}, fmt.Errorf("%w: room is %s", domain.ErrInvalidGameSelection, room.Status)
	}
	game, ok := r.catalog.Get(gameID)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: unknown game %q", domain.ErrInvalidGameSelection, gameID)
	}
	n := len(room.Participants)
	if n < game.MinPlayers || (game.MaxPlayers > 0 && n > game.MaxPlayers) {
		return Snapshot{}, fmt.Errorf("%w: %q needs %d-%d players, room has %d",
			domain.ErrInvalidGameSelection, gameID, game.MinPlayers, game.MaxPlayers, n)
	}

	room.Status = domain.StatusStarting
	room.SelectedGame = gameID
	r.startCountdownLocked(rs)
	slog.Info("game selected", "room", roomID, "game", gameID, "players", n)

	snap := makeSnapshot(rs)
	r.notifier.RoomSnapshot(snap)
	return snap, nil
}

// Kick removes the target on behalf of the host and reports the
// removed participant's connection id so the transport can notify it.
func (r *Registry) Kick(roomID, byUserID, targetUserID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return "", domain.ErrRoomNotFound
	}
	if rs.room.HostID != byUserID {
		return "", domain.ErrNotHost
	}
	target, ok := rs.room.Participant(targetUserID)
	if !ok {
		return "", domain.ErrNotInRoom
	}
	connID := target.ConnID
	r.removeLocked(rs, targetUserID)
	return connID, nil
}

// SetStatus updates the free-text readiness marker. The state machine
// does not interpret it, but the change is fanned out.
func (r *Registry) SetStatus(roomID, userID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	p, ok := rs.room.Participant(userID)
	if !ok {
		return domain.ErrNotInRoom
	}
	p.Status = status
	p.LastSeen = time.Now()
	r.notifier.RoomSnapshot(makeSnapshot(rs))
	return nil
}

// Touch refreshes the participant's last-seen marker (ws pong path).
func (r *Registry) Touch(roomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rs, ok := r.rooms[roomID]; ok {
		if p, ok := rs.room.Participant(userID); ok {
			p.LastSeen = time.Now()
		}
	}
}

// FinishGame is the game module's active -> finished signal. Finishing
// a room that is not active is a no-op, the callback may be retried.
func (r *Registry) FinishGame(roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if rs.room.Status != domain.StatusActive {
		return nil
	}
	rs.room.Status = domain.StatusFinished
	if r.recorder != nil {
		r.recorder.RecordFinish(roomID)
	}
	slog.Info("game finished", "room", roomID, "game", rs.room.SelectedGame)
	r.notifier.RoomSnapshot(makeSnapshot(rs))
	return nil
}

// HostDisconnected cancels a pending countdown as soon as the host's
// connection drops, without waiting out the grace period. The host
// stays a participant until the grace window elapses.
func (r *Registry) HostDisconnected(roomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok || rs.room.HostID != userID || rs.room.Status != domain.StatusStarting {
		return
	}
	r.cancelCountdownLocked(rs)
	rs.room.Status = domain.StatusWaiting
	rs.room.SelectedGame = ""
	slog.Info("countdown cancelled, host disconnected", "room", roomID, "host", userID)
	r.notifier.RoomSnapshot(makeSnapshot(rs))
}

// Get returns a snapshot or ErrRoomNotFound. Callers treat the latter
// as "not joined yet", not as a fatal condition.
func (r *Registry) Get(roomID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return Snapshot{}, domain.ErrRoomNotFound
	}
	return makeSnapshot(rs), nil
}

// List returns snapshots of all live rooms, oldest first.
func (r *Registry) List() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, 0, len(r.rooms))
	states := make([]*roomState, 0, len(r.rooms))
	for _, rs := range r.rooms {
		states = append(states, rs)
	}
	sort.Slice(states, func(i, j int) bool {
		if !states[i].room.CreatedAt.Equal(states[j].room.CreatedAt) {
			return states[i].room.CreatedAt.Before(states[j].room.CreatedAt)
		}
		return states[i].room.ID < states[j].room.ID
	})
	for _, rs := range states {
		out = append(out, makeSnapshot(rs))
	}
	return out
}

// removeLocked takes a participant out and settles the fallout: host
// succession, countdown cancellation, disposal of empty rooms.
func (r *Registry) removeLocked(rs *roomState, userID string) bool {
	room := rs.room
	wasHost := room.HostID == userID
	if !room.RemoveParticipant(userID) {
		return false
	}

	if wasHost {
		if room.Status == domain.StatusStarting {
			r.cancelCountdownLocked(rs)
			room.Status = domain.StatusWaiting
			room.SelectedGame = ""
		}
		room.HostID = room.NextHost()
	}

	// a departure can drop the room below the selected game's minimum
	if room.Status == domain.StatusStarting {
		if game, ok := r.catalog.Get(room.SelectedGame); ok && len(room.Participants) < game.MinPlayers {
			r.cancelCountdownLocked(rs)
			room.Status = domain.StatusWaiting
			room.SelectedGame = ""
			slog.Info("countdown cancelled, below minimum players",
				"room", room.ID, "players", len(room.Participants), "min", game.MinPlayers)
		}
	}

	if len(room.Participants) == 0 {
		if room.Status == domain.StatusActive && r.recorder != nil {
			r.recorder.RecordFinish(room.ID)
		}
		r.cancelCountdownLocked(rs)
		delete(r.rooms, room.ID)
		slog.Debug("room disposed", "room", room.ID)
		return true
	}

	r.notifier.RoomSnapshot(makeSnapshot(rs))
	return true
}
