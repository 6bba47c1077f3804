package network

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  maxMessageSize,
	WriteBufferSize: maxMessageSize,
	// The wire protocol is a game client talking to its own server, not a
	// browser page embedding third-party origins; same-origin checks don't
	// apply the way they would to a cross-site widget.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket connection and runs that
// connection's lifecycle until it closes. Intended to be wired as an
// http.HandlerFunc on the server's /ws route.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	// context.Background(), not r.Context(): the request context is
	// cancelled the instant ServeWS returns even though Upgrade hijacked
	// the underlying connection, so the pumps' lifetime must instead be
	// governed by read/write errors on the hijacked socket itself.
	c := newConn(h, wsConn)
	go c.serve(context.Background())
}

// ListenAndServe starts a minimal HTTP server exposing only the websocket
// route, returning once ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h *Hub) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
