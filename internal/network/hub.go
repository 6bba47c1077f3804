package network

import (
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/mini-world/internal/actionqueue"
	"github.com/talgya/mini-world/internal/broadcast"
	"github.com/talgya/mini-world/internal/worldstate"
)

type requestKind uint8

const (
	reqAuth requestKind = iota
	reqSelectRole
	reqDisconnect
)

// connectRequest is a connection goroutine's synchronous request into the
// tick loop — the only way a connection touches *worldstate.World, keeping
// the world's single-writer property (§9) intact across auth/role-select
// as well as actions.
type connectRequest struct {
	kind     requestKind
	name     string
	actorID  string // set by select_role/disconnect, correlating with the auth reply
	role     string
	resultCh chan connectResult
}

type connectResult struct {
	ok       bool
	reason   string
	resumed  bool
	actorID  string
	role     string
	position worldstate.Position
}

// Hub owns every live connection and the pending connect-request queue that
// the tick loop drains once per Step, before actions are drained. It never
// mutates *worldstate.World itself.
type Hub struct {
	queue *actionqueue.Queue

	mu          sync.Mutex
	conns       map[string]*conn  // actorID -> conn, only for authenticated connections
	pendingNew  map[string]string // candidate actorID -> name, awaiting select_role
	pending     []connectRequest
	lastTick    uint64
}

// currentTick returns the most recently broadcast tick, for the pong
// envelope's serverTick field.
func (h *Hub) currentTick() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastTick
}

// NewHub constructs a hub around the engine's action queue.
func NewHub(queue *actionqueue.Queue) *Hub {
	return &Hub{
		queue:      queue,
		conns:      make(map[string]*conn),
		pendingNew: make(map[string]string),
	}
}

// enqueue pushes a connect request and returns once the tick loop has
// resolved it via ProcessPending.
func (h *Hub) enqueue(req connectRequest) connectResult {
	req.resultCh = make(chan connectResult, 1)
	h.mu.Lock()
	h.pending = append(h.pending, req)
	h.mu.Unlock()
	return <-req.resultCh
}

func (h *Hub) requestAuth(name string) connectResult {
	return h.enqueue(connectRequest{kind: reqAuth, name: name})
}

func (h *Hub) requestSelectRole(actorID, role string) connectResult {
	return h.enqueue(connectRequest{kind: reqSelectRole, actorID: actorID, role: role})
}

// ProcessPending resolves every queued auth/select_role/disconnect request
// against the world. Called once per tick, from the tick-owning goroutine
// only, before actions are drained — so this is the only place outside
// engine.Step's own processors that ever mutates w.Actors.
func (h *Hub) ProcessPending(w *worldstate.World, tick uint64) {
	h.mu.Lock()
	reqs := h.pending
	h.pending = nil
	h.mu.Unlock()

	for _, req := range reqs {
		switch req.kind {
		case reqSelectRole:
			req.resultCh <- h.resolveSelectRole(w, tick, req)
		case reqDisconnect:
			req.resultCh <- h.resolveDisconnect(w, req)
		default:
			req.resultCh <- h.resolveAuth(w, tick, req)
		}
	}
}

func (h *Hub) resolveDisconnect(w *worldstate.World, req connectRequest) connectResult {
	if a, ok := w.Actors[req.actorID]; ok {
		a.Connected = false
	}
	return connectResult{ok: true}
}

func (h *Hub) resolveAuth(w *worldstate.World, tick uint64, req connectRequest) connectResult {
	for _, id := range w.SortedActorIDs() {
		a := w.Actors[id]
		if a.Name != req.name {
			continue
		}
		if a.Connected {
			return connectResult{ok: false, reason: "name already connected"}
		}
		a.Connected = true
		a.ConnectedAtTick = tick
		return connectResult{
			ok: true, resumed: true, actorID: a.ID, role: a.Role.String(), position: a.Position,
		}
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.pendingNew[id] = req.name
	h.mu.Unlock()
	return connectResult{ok: true, resumed: false, actorID: id}
}

func (h *Hub) resolveSelectRole(w *worldstate.World, tick uint64, req connectRequest) connectResult {
	h.mu.Lock()
	name, found := h.pendingNew[req.actorID]
	if found {
		delete(h.pendingNew, req.actorID)
	}
	h.mu.Unlock()
	if !found {
		return connectResult{ok: false, reason: "unknown actor"}
	}

	role, ok := parseRole(req.role)
	if !ok {
		return connectResult{ok: false, reason: "unknown role"}
	}

	actor := worldstate.NewActor(req.actorID, name, role)
	actor.ConnectedAtTick = tick
	w.AddActor(actor)
	return connectResult{ok: true, actorID: actor.ID, role: role.String(), position: actor.Position}
}

func parseRole(s string) (worldstate.Role, bool) {
	switch s {
	case "merchant":
		return worldstate.RoleMerchant, true
	case "fighter":
		return worldstate.RoleFighter, true
	case "monster":
		return worldstate.RoleMonster, true
	default:
		return 0, false
	}
}

// register/unregister track which conn serves which authenticated actorID,
// so Broadcast can address outbound tick updates. A disconnect only drops
// the conn from this registry — the actor's Connected flag (flipped by
// Disconnect, via the same pending-request path used for auth) is the
// thing that actually governs reconnect/name-reuse semantics.
func (h *Hub) register(actorID string, c *conn) {
	h.mu.Lock()
	h.conns[actorID] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(actorID string) {
	h.mu.Lock()
	delete(h.conns, actorID)
	h.mu.Unlock()
}

// Disconnect flips the actor's connected flag off. It is applied the same
// way as auth/select_role — queued and resolved by the tick loop — so it
// never races a concurrent tick. The result is discarded: the resultCh is
// buffered (size 1), so ProcessPending's send never blocks even though
// nothing ever reads it back here.
func (h *Hub) Disconnect(actorID string) {
	h.mu.Lock()
	h.pending = append(h.pending, connectRequest{
		kind: reqDisconnect, actorID: actorID, resultCh: make(chan connectResult, 1),
	})
	h.mu.Unlock()
}

// Broadcast delivers one TickUpdate per connected actor to its conn's send
// channel. Actors with no live connection (e.g. a monster-role permadeath
// NPC-actor, or a lagging disconnect) are skipped.
func (h *Hub) Broadcast(tick uint64, updates map[string]broadcast.TickUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastTick = tick
	for actorID, update := range updates {
		c, ok := h.conns[actorID]
		if !ok {
			continue
		}
		select {
		case c.send <- tickUpdateMsg(update):
		default:
			// send buffer full: connection is backed up, drop this tick's
			// update rather than block the broadcaster.
		}
	}
}
