package lobby

import (
	"log/slog"
	"time"

	"github.com/flirting-singles/party-service/internal/domain"
)

// countdown is the per-room launch timer, owned by the room entry as
// an explicit start/cancel pair so no timer outlives its transition.
type countdown struct {
	remaining int
	stop      chan struct{}
}

// caller must hold r.mu
func (r *Registry) startCountdownLocked(rs *roomState) {
	cd := &countdown{
		remaining: r.cfg.CountdownStart,
		stop:      make(chan struct{}),
	}
	rs.countdown = cd
	go r.runCountdown(rs.room.ID, cd)
}

// caller must hold r.mu. Clearing the handle before closing stop means
// a tick racing with cancellation sees a stale handle and bails.
func (r *Registry) cancelCountdownLocked(rs *roomState) {
	if rs.countdown == nil {
		return
	}
	cd := rs.countdown
	rs.countdown = nil
	close(cd.stop)
}

func (r *Registry) runCountdown(roomID string, cd *countdown) {
	t := time.NewTicker(r.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-cd.stop:
			return
		case <-t.C:
			if !r.tick(roomID, cd) {
				return
			}
		}
	}
}

// tick advances the countdown by one step and, at zero, performs the
// starting -> active transition with its one-time launch handoff.
func (r *Registry) tick(roomID string, cd *countdown) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok || rs.countdown != cd {
		return false // cancelled or superseded, stale timer must not fire
	}

	cd.remaining--
	r.notifier.CountdownTick(roomID, cd.remaining)
	if cd.remaining > 0 {
		return true
	}

	rs.countdown = nil
	room := rs.room
	room.Status = domain.StatusActive
	slog.Info("game launch", "room", roomID, "game", room.SelectedGame,
		"players", len(room.Participants))
	r.notifier.GameLaunch(roomID, room.SelectedGame)
	if r.recorder != nil {
		r.recorder.RecordLaunch(roomID, room.SelectedGame, room.HostID, len(room.Participants))
	}
	r.notifier.RoomSnapshot(makeSnapshot(rs))
	return false
}
