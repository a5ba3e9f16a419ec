package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/flirting-singles/party-service/internal/catalog"
	"github.com/flirting-singles/party-service/internal/domain"
	"github.com/flirting-singles/party-service/internal/lobby"
	"github.com/flirting-singles/party-service/internal/postgres"
	"github.com/flirting-singles/party-service/internal/service"
	httpmw "github.com/flirting-singles/party-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	reg        *lobby.Registry
	catalog    *catalog.Catalog
	chatSvc    *service.ChatService
	sessionSvc *service.SessionService
}

func NewHandler(reg *lobby.Registry, cat *catalog.Catalog, chat *service.ChatService, sessions *service.SessionService) *Handler {
	return &Handler{
		reg:        reg,
		catalog:    cat,
		chatSvc:    chat,
		sessionSvc: sessions,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	snaps := h.reg.List()
	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(snaps))}
	for _, s := range snaps {
		resp.Items = append(resp.Items, RoomItem{
			RoomID:       s.RoomID,
			HostID:       s.HostID,
			Status:       string(s.Status),
			SelectedGame: s.SelectedGame,
			Players:      len(s.Participants),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.reg.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	detail := RoomDetail{
		RoomID:             snap.RoomID,
		HostID:             snap.HostID,
		Status:             string(snap.Status),
		SelectedGame:       snap.SelectedGame,
		CountdownRemaining: snap.CountdownRemaining,
		Participants:       make([]ParticipantItem, 0, len(snap.Participants)),
	}
	for _, p := range snap.Participants {
		detail.Participants = append(detail.Participants, ParticipantItem{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Status:      p.Status,
			JoinedAt:    p.JoinedAt,
			LastSeen:    p.LastSeen,
		})
	}
	writeJSON(w, http.StatusOK, detail)
}

// GET /games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games := h.catalog.List()
	resp := GamesListResponse{Items: make([]GameItem, 0, len(games))}
	for _, g := range games {
		resp.Items = append(resp.Items, GameItem{
			ID:         g.ID,
			Name:       g.Name,
			MinPlayers: g.MinPlayers,
			MaxPlayers: g.MaxPlayers,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/finish — game modules report completion here.
func (h *Handler) FinishRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if caller, ok := httpmw.IdentityFromCtx(r.Context()); ok {
		slog.Info("finish requested", slog.String("room", id), slog.String("by", caller.UserID))
	}
	if err := h.reg.FinishGame(id); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.FinishRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "finished"})
}

// GET /rooms/{id}/chat?after=&limit=
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	if h.chatSvc == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "chat history disabled"})
		return
	}
	roomID := chi.URLParam(r, "id")
	after := r.URL.Query().Get("after")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	items, next, err := h.chatSvc.History(r.Context(), roomID, after, limit)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.GetChatHistory:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := ChatHistoryResponse{Items: make([]ChatMessageItem, 0, len(items)), NextCursor: next}
	for _, m := range items {
		resp.Items = append(resp.Items, ChatMessageItem{
			ID:        m.ID,
			RoomID:    m.RoomID,
			UserID:    m.UserID,
			Text:      m.Text,
			CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /sessions?limit=&cursor=
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h.sessionSvc == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "session history disabled"})
		return
	}
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	items, next, err := h.sessionSvc.List(r.Context(), limit, cursor)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.ListSessions:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := SessionsListResponse{Items: make([]SessionItem, 0, len(items)), NextCursor: next}
	for _, s := range items {
		resp.Items = append(resp.Items, SessionItem{
			ID:         s.ID,
			RoomID:     s.RoomID,
			GameID:     s.GameID,
			HostID:     s.HostID,
			Players:    s.Players,
			LaunchedAt: s.LaunchedAt,
			FinishedAt: s.FinishedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
