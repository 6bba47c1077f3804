package network

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// Timing constants, grounded on niceyeti-tabular's fastview/client.go —
// the only pack repo with a live websocket client, so its liveness-timing
// choices are kept verbatim rather than invented.
const (
	writeWait        = 1 * time.Second
	maxMessageSize    = 8192
	pingResolution   = 200 * time.Millisecond
	pongWait         = 4 * pingResolution
	readDeadline     = 1 * time.Second
	writeDeadline    = 1 * time.Second
	closeGracePeriod = 10 * time.Second
)

var (
	// ErrSockCongestion is returned when a write could not acquire the
	// write semaphore before its deadline — the connection is
	// backed up and should be dropped.
	ErrSockCongestion = errors.New("network: socket congested")
	// ErrPongDeadlineExceeded means no pong arrived within pongWait of the
	// last ping; the peer is presumed dead.
	ErrPongDeadlineExceeded = errors.New("network: pong deadline exceeded")
)

// websock serializes concurrent writes against a single *websocket.Conn
// (gorilla's Conn permits at most one concurrent writer) via a size-1
// channel semaphore, the same shape as the teacher-of-teacher's client.go.
// Reads are never concurrent here — exactly one goroutine (readPump) ever
// reads a connection — so read serialization is unneeded and omitted.
type websock struct {
	conn     *websocket.Conn
	writeSem chan struct{}
}

func newWebsock(conn *websocket.Conn) *websock {
	conn.SetReadLimit(maxMessageSize)
	ws := &websock{
		conn:     conn,
		writeSem: make(chan struct{}, 1),
	}
	ws.writeSem <- struct{}{}
	return ws
}

// Write runs fn with exclusive write access to the connection.
func (w *websock) Write(fn func(*websocket.Conn) error) error {
	select {
	case <-w.writeSem:
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
	defer func() { w.writeSem <- struct{}{} }()
	return fn(w.conn)
}

func (w *websock) WriteJSON(v any) error {
	return w.Write(func(c *websocket.Conn) error {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		return c.WriteJSON(v)
	})
}

func (w *websock) Close() {
	_ = w.Write(func(c *websocket.Conn) error {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		return nil
	})
	time.AfterFunc(closeGracePeriod, func() { _ = w.conn.Close() })
}

func isClosure(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

func isUnexpectedError(err error) bool {
	return websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
