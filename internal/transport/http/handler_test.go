package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flirting-singles/party-service/internal/catalog"
	"github.com/flirting-singles/party-service/internal/domain"
	"github.com/flirting-singles/party-service/internal/lobby"
	"github.com/flirting-singles/party-service/internal/security"
	"github.com/flirting-singles/party-service/internal/transport/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *lobby.Registry, *security.TokenVerifier) {
	t.Helper()

	cat := catalog.New(nil)
	hub := ws.NewHub()
	reg := lobby.NewRegistry(cat, ws.NewNotifier(hub), nil, lobby.Config{
		TickInterval: 10 * time.Millisecond,
		GracePeriod:  20 * time.Millisecond,
	})
	verifier := security.NewTokenVerifier("test-secret", "test")
	wsServer := ws.NewServer(hub, reg, lobby.NewBinder(reg), verifier, nil)

	h := NewHandler(reg, cat, nil, nil)
	return NewRouter(h, verifier, wsServer), reg, verifier
}

func doJSON(t *testing.T, router http.Handler, method, target, token string, out any) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestListRooms(t *testing.T) {
	router, reg, _ := newTestRouter(t)

	var resp RoomsListResponse
	rec := doJSON(t, router, http.MethodGet, "/rooms", "", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Items)

	_, err := reg.Join("r1", domain.Participant{UserID: "alice", DisplayName: "Alice", ConnID: "c1"})
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodGet, "/rooms", "", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "r1", resp.Items[0].RoomID)
	assert.Equal(t, "alice", resp.Items[0].HostID)
	assert.Equal(t, "waiting", resp.Items[0].Status)
	assert.Equal(t, 1, resp.Items[0].Players)
}

func TestGetRoom(t *testing.T) {
	router, reg, _ := newTestRouter(t)

	_, err := reg.Join("r1", domain.Participant{UserID: "alice", DisplayName: "Alice", ConnID: "c1"})
	require.NoError(t, err)

	var detail RoomDetail
	rec := doJSON(t, router, http.MethodGet, "/rooms/r1", "", &detail)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", detail.HostID)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, "Alice", detail.Participants[0].DisplayName)

	rec = doJSON(t, router, http.MethodGet, "/rooms/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListGames(t *testing.T) {
	router, _, _ := newTestRouter(t)

	var resp GamesListResponse
	rec := doJSON(t, router, http.MethodGet, "/games", "", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, resp.Items)

	ids := make([]string, 0, len(resp.Items))
	for _, g := range resp.Items {
		ids = append(ids, g.ID)
	}
	assert.Contains(t, ids, "bingo")
}

func TestFinishRoom_RequiresToken(t *testing.T) {
	router, reg, verifier := newTestRouter(t)

	_, err := reg.Join("r1", domain.Participant{UserID: "alice", DisplayName: "Alice", ConnID: "c1"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/rooms/r1/finish", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := verifier.Sign(security.Identity{UserID: "module", DisplayName: "Game Module"}, time.Minute)
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodPost, "/rooms/r1/finish", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/rooms/nope/finish", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatHistory_DisabledWithoutStore(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/rooms/r1/chat", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestListSessions_DisabledWithoutStore(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/sessions", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
