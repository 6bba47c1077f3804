package network

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// conn is one authenticated-or-authenticating client connection. It owns
// the per-connection goroutines — readPump, pingPong, writePump, run under
// an errgroup.WithContext exactly as niceyeti-tabular's fastview/client.go
// does, generalized from that example's unidirectional publish into a
// connection that both reads client actions and writes tick updates.
type conn struct {
	hub     *Hub
	ws      *websock
	actorID string // set once auth/select_role completes
	send    chan any

	lastPong time.Time
}

func newConn(hub *Hub, wsConn *websocket.Conn) *conn {
	return &conn{
		hub:      hub,
		ws:       newWebsock(wsConn),
		send:     make(chan any, 32),
		lastPong: time.Now(),
	}
}

// serve drives one connection end to end: auth handshake, then the three
// concurrent pumps until any of them errors or the connection closes.
func (c *conn) serve(ctx context.Context) {
	defer c.cleanup()

	if !c.handshake() {
		return
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return c.readPump(gctx) })
	group.Go(func() error { return c.pingPong(gctx) })
	group.Go(func() error { return c.writePump(gctx) })

	if err := group.Wait(); err != nil && !isClosure(err) {
		slog.Debug("connection closed", "actorId", c.actorID, "error", err)
	}
}

func (c *conn) cleanup() {
	if c.actorID != "" {
		c.hub.unregister(c.actorID)
		c.hub.Disconnect(c.actorID)
	}
	c.ws.Close()
}

// handshake runs the auth_prompt → auth → (role_prompt → select_role |
// role_confirmed) sequence (§6) before any action/ping traffic is valid.
// Returns false if the connection should be torn down immediately.
func (c *conn) handshake() bool {
	if err := c.ws.WriteJSON(authPrompt()); err != nil {
		return false
	}

	var auth authMsg
	if !c.awaitMessage("auth", &auth) {
		return false
	}

	result := c.hub.requestAuth(auth.Name)
	if !result.ok {
		_ = c.ws.WriteJSON(authError(result.reason))
		return false
	}

	if result.resumed {
		c.actorID = result.actorID
		c.hub.register(c.actorID, c)
		_ = c.ws.WriteJSON(authSuccess(c.actorID))
		_ = c.ws.WriteJSON(roleConfirmed(result.role, c.actorID, result.position))
		return true
	}

	// Brand new name: candidate id assigned, role still to be chosen.
	pendingID := result.actorID
	_ = c.ws.WriteJSON(authSuccess(pendingID))
	_ = c.ws.WriteJSON(rolePrompt([]string{"merchant", "fighter", "monster"}))

	var sel selectRoleMsg
	if !c.awaitMessage("select_role", &sel) {
		return false
	}
	roleResult := c.hub.requestSelectRole(pendingID, sel.Role)
	if !roleResult.ok {
		_ = c.ws.WriteJSON(authError(roleResult.reason))
		return false
	}
	c.actorID = roleResult.actorID
	c.hub.register(c.actorID, c)
	_ = c.ws.WriteJSON(roleConfirmed(roleResult.role, c.actorID, roleResult.position))
	return true
}

// awaitMessage blocks for the next inbound frame matching wantType,
// silently skipping anything malformed or of a different type (§7:
// malformed ingress is dropped, never answered), until a match arrives or
// the connection dies.
func (c *conn) awaitMessage(wantType string, out any) bool {
	for {
		_ = c.ws.conn.SetReadDeadline(time.Now().Add(pongWait))
		_, data, err := c.ws.conn.ReadMessage()
		if err != nil {
			return false
		}
		var env envelope
		if json.Unmarshal(data, &env) != nil || env.Type != wantType {
			continue
		}
		if json.Unmarshal(data, out) != nil {
			continue
		}
		return true
	}
}

// readPump is the sole reader goroutine for this connection, dispatching
// action and ping messages once past the handshake. Malformed or unknown
// messages are silently dropped (§7); the pump never replies to them.
func (c *conn) readPump(ctx context.Context) error {
	c.ws.conn.SetPongHandler(func(string) error {
		c.lastPong = time.Now()
		return nil
	})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_ = c.ws.conn.SetReadDeadline(time.Now().Add(pongWait))
		_, data, err := c.ws.conn.ReadMessage()
		if err != nil {
			if isUnexpectedError(err) {
				slog.Debug("unexpected close", "actorId", c.actorID, "error", err)
			}
			return err
		}

		var env envelope
		if json.Unmarshal(data, &env) != nil {
			continue
		}
		switch env.Type {
		case "action":
			var m actionMsg
			if json.Unmarshal(data, &m) != nil {
				continue
			}
			action, ok := decodeAction(c.actorID, m)
			if !ok {
				continue
			}
			c.hub.queue.Enqueue(action)
		case "ping":
			select {
			case c.send <- pong(c.hub.currentTick()):
			default:
			}
		default:
			// auth/select_role after handshake, or anything unrecognized:
			// dropped silently.
		}
	}
}

// pingPong sends a liveness ping at pingResolution and fails the group if
// no pong has arrived within pongWait, mirroring fastview/client.go.
func (c *conn) pingPong(ctx context.Context) error {
	ticker := time.NewTicker(pingResolution)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Since(c.lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := c.ws.Write(func(wc *websocket.Conn) error {
				wc.SetWriteDeadline(time.Now().Add(writeWait))
				return wc.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			}); err != nil {
				return err
			}
		}
	}
}

// writePump is the sole writer for outbound JSON: tick updates pushed by
// Hub.Broadcast and pong replies pushed by readPump.
func (c *conn) writePump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-c.send:
			if err := c.ws.WriteJSON(msg); err != nil {
				return err
			}
		}
	}
}
