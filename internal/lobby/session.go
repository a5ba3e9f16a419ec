package lobby

import (
	"sync"
	"time"
)

// Binder maps each live connection to at most one (user, room) pair.
// Disconnects do not remove the participant immediately: removal is
// deferred by the registry's grace period so a page refresh can rebind
// the same user without a leave/host-reassignment cycle.
type Binder struct {
	mu     sync.Mutex
	reg    *Registry
	grace  time.Duration
	byConn map[string]*binding
	byUser map[string]*binding // room + user -> binding
}

type binding struct {
	connID  string
	userID  string
	roomID  string
	removal *time.Timer
}

func NewBinder(reg *Registry) *Binder {
	return &Binder{
		reg:    reg,
		grace:  reg.GracePeriod(),
		byConn: make(map[string]*binding),
		byUser: make(map[string]*binding),
	}
}

func userKey(roomID, userID string) string { return roomID + "\x00" + userID }

// Bind associates the connection with the room. A connection already
// bound to a different room leaves that room first; a user with a
// pending grace removal is rebound without triggering it. When another
// live connection held the same seat, its id is returned so the
// transport can evict it.
func (b *Binder) Bind(connID, userID, roomID string) (displaced string) {
	var leaveRoom, leaveUser string

	b.mu.Lock()
	if old := b.byConn[connID]; old != nil {
		if old.roomID == roomID && old.userID == userID {
			b.mu.Unlock()
			return ""
		}
		b.forgetLocked(old)
		leaveRoom, leaveUser = old.roomID, old.userID
	}
	if prev := b.byUser[userKey(roomID, userID)]; prev != nil {
		// reconnect or duplicate login, the new connection takes over
		b.forgetLocked(prev)
		if prev.connID != connID {
			displaced = prev.connID
		}
	}
	bd := &binding{connID: connID, userID: userID, roomID: roomID}
	b.byConn[connID] = bd
	b.byUser[userKey(roomID, userID)] = bd
	b.mu.Unlock()

	if leaveRoom != "" {
		_ = b.reg.Leave(leaveRoom, leaveUser)
	}
	return displaced
}

// Unbind is the disconnect path. It arms the grace timer instead of
// removing the participant; a host's pending countdown is cancelled
// right away. Unbinding an unbound connection is a no-op.
func (b *Binder) Unbind(connID string) {
	b.mu.Lock()
	bd := b.byConn[connID]
	if bd == nil {
		b.mu.Unlock()
		return
	}
	delete(b.byConn, connID)
	bd.removal = time.AfterFunc(b.grace, func() { b.expire(bd) })
	roomID, userID := bd.roomID, bd.userID
	b.mu.Unlock()

	b.reg.HostDisconnected(roomID, userID)
}

// Drop forgets the binding immediately (explicit leave). The caller is
// responsible for the registry-side removal.
func (b *Binder) Drop(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bd := b.byConn[connID]; bd != nil {
		b.forgetLocked(bd)
	}
}

// DropUser forgets a binding by identity (kick path) and reports the
// connection id that was bound, if any.
func (b *Binder) DropUser(roomID, userID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	bd := b.byUser[userKey(roomID, userID)]
	if bd == nil {
		return ""
	}
	b.forgetLocked(bd)
	return bd.connID
}

// Lookup reports the room the connection is currently bound to.
func (b *Binder) Lookup(connID string) (roomID, userID string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bd := b.byConn[connID]
	if bd == nil {
		return "", "", false
	}
	return bd.roomID, bd.userID, true
}

func (b *Binder) expire(bd *binding) {
	b.mu.Lock()
	if b.byUser[userKey(bd.roomID, bd.userID)] != bd {
		b.mu.Unlock()
		return // rebound before the grace window elapsed
	}
	delete(b.byUser, userKey(bd.roomID, bd.userID))
	b.mu.Unlock()

	_ = b.reg.Leave(bd.roomID, bd.userID)
}

// caller must hold b.mu
func (b *Binder) forgetLocked(bd *binding) {
	if bd.removal != nil {
		bd.removal.Stop()
		bd.removal = nil
	}
	delete(b.byConn, bd.connID)
	if b.byUser[userKey(bd.roomID, bd.userID)] == bd {
		delete(b.byUser, userKey(bd.roomID, bd.userID))
	}
}
