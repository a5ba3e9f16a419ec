package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/flirting-singles/party-service/internal/domain"
	"github.com/flirting-singles/party-service/internal/postgres"
)

// SessionService records launched and finished games. It implements
// lobby.Recorder; writes happen off the registry path so a slow or
// down database never stalls a room transition.
type SessionService struct {
	repo    *postgres.SessionRepository
	timeout time.Duration
}

func NewSessionService(repo *postgres.SessionRepository) *SessionService {
	return &SessionService{repo: repo, timeout: 5 * time.Second}
}

func (s *SessionService) RecordLaunch(roomID, gameID, hostID string, players int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		sess := &domain.GameSession{
			RoomID:  roomID,
			GameID:  gameID,
			HostID:  hostID,
			Players: players,
		}
		if err := s.repo.RecordLaunch(ctx, sess); err != nil {
			slog.Warn("record launch failed", "room", roomID, "game", gameID, "err", err)
		}
	}()
}

func (s *SessionService) RecordFinish(roomID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.repo.RecordFinish(ctx, roomID); err != nil {
			slog.Warn("record finish failed", "room", roomID, "err", err)
		}
	}()
}

func (s *SessionService) List(ctx context.Context, limit int, cursor string) ([]domain.GameSession, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return s.repo.List(ctx, limit, cursor)
}
