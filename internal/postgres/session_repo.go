package postgres

import (
	"context"
	"fmt"

	"github.com/flirting-singles/party-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) RecordLaunch(ctx context.Context, s *domain.GameSession) error {
	query := `
		INSERT INTO game_sessions (room_id, game_id, host_id, players)
		VALUES ($1, $2, $3, $4)
		RETURNING id, launched_at`
	return r.db.QueryRow(ctx, query, s.RoomID, s.GameID, s.HostID, s.Players).
		Scan(&s.ID, &s.LaunchedAt)
}

// RecordFinish closes the open session of the room, if any.
func (r *SessionRepository) RecordFinish(ctx context.Context, roomID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE game_sessions SET finished_at = now()
		WHERE room_id = $1 AND finished_at IS NULL`, roomID)
	return err
}

// List returns played sessions with keyset pagination, newest first.
func (r *SessionRepository) List(ctx context.Context, limit int, cursorStr string) ([]domain.GameSession, string, error) {
	cur, err := DecodeKeyset(cursorStr)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}

	const q = `
		SELECT id, room_id, game_id, host_id, players, launched_at, finished_at
		FROM game_sessions
		WHERE ($1::timestamptz IS NULL OR launched_at < $1
		       OR (launched_at = $1 AND id < $2))
		ORDER BY launched_at DESC, id DESC
		LIMIT $3`

	var launchedAt any
	var id any
	if cur != nil {
		launchedAt = cur.TS
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, q, launchedAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.GameSession
	for rows.Next() {
		var s domain.GameSession
		if err := rows.Scan(&s.ID, &s.RoomID, &s.GameID, &s.HostID, &s.Players, &s.LaunchedAt, &s.FinishedAt); err != nil {
			return nil, "", err
		}
		out = append(out, s)
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeKeyset(Keyset{TS: last.LaunchedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, rows.Err()
}
