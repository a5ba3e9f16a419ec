package lobby

import (
	"sync"
	"time"

	"github.com/flirting-singles/party-service/internal/domain"
)

// fakeNotifier records everything the registry fans out.
type fakeNotifier struct {
	mu       sync.Mutex
	snaps    []Snapshot
	ticks    []int
	launches []string
}

func (n *fakeNotifier) RoomSnapshot(snap Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snaps = append(n.snaps, snap)
}

func (n *fakeNotifier) CountdownTick(roomID string, remaining int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ticks = append(n.ticks, remaining)
}

func (n *fakeNotifier) GameLaunch(roomID, gameID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.launches = append(n.launches, gameID)
}

func (n *fakeNotifier) tickValues() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]int, len(n.ticks))
	copy(out, n.ticks)
	return out
}

func (n *fakeNotifier) launchCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.launches)
}

func (n *fakeNotifier) lastSnapshot() (Snapshot, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.snaps) == 0 {
		return Snapshot{}, false
	}
	return n.snaps[len(n.snaps)-1], true
}

type fakeRecorder struct {
	mu          sync.Mutex
	launched    []string
	finishedCnt int
}

func (r *fakeRecorder) RecordLaunch(roomID, gameID, hostID string, players int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.launched = append(r.launched, gameID)
}

func (r *fakeRecorder) RecordFinish(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishedCnt++
}

func (r *fakeRecorder) launches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.launched)
}

func (r *fakeRecorder) finishes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishedCnt
}

type fakeCatalog map[string]GameInfo

func (c fakeCatalog) Get(gameID string) (GameInfo, bool) {
	g, ok := c[gameID]
	return g, ok
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"bingo":  {ID: "bingo", MinPlayers: 2, MaxPlayers: 50},
		"dinner": {ID: "dinner", MinPlayers: 2, MaxPlayers: 2},
	}
}

func newTestRegistry(cfg Config) (*Registry, *fakeNotifier) {
	n := &fakeNotifier{}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 5 * time.Millisecond
	}
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = 40 * time.Millisecond
	}
	return NewRegistry(testCatalog(), n, nil, cfg), n
}

func participant(userID, connID string) domain.Participant {
	return domain.Participant{
		UserID:      userID,
		DisplayName: userID,
		ConnID:      connID,
	}
}
