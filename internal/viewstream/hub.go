package viewstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ride/internal/workerutil"
)

const (
	writeDeadline      = 5 * time.Second
	readDeadline       = 90 * time.Second
	pingInterval       = 30 * time.Second
	maxReadMessageSize = 32 * 1024
	shutdownTimeout    = 5 * time.Second
)

// The server only listens on loopback, so any origin (the webview's custom
// scheme included) is accepted.
var upgrader = websocket.Upgrader{
	CheckOrigin:     func(*http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 32 * 1024,
}

// ContentSource supplies the current text of a tab for the snapshot sent on
// subscribe.
type ContentSource interface {
	TabText(tabID string) (string, bool)
}

// ContentSourceFunc adapts a function to ContentSource.
type ContentSourceFunc func(tabID string) (string, bool)

func (f ContentSourceFunc) TabText(tabID string) (string, bool) { return f(tabID) }

// Options configures a Hub.
type Options struct {
	// Addr is the listen address; "127.0.0.1:0" picks a free port.
	Addr string
	// Source, when set, provides the snapshot pushed right after subscribe.
	Source ContentSource
}

// Hub serves one webview client at a time. A new connection replaces the
// previous one, which covers page reloads.
//
// Lock ordering: writeMu before mu, never the reverse.
type Hub struct {
	opts Options

	mu         sync.RWMutex
	conn       *websocket.Conn
	subscribed map[string]bool

	// gorilla/websocket allows one concurrent writer.
	writeMu sync.Mutex

	server *http.Server
	url    string
	wg     sync.WaitGroup

	stopOnce sync.Once
}

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

type controlMsg struct {
	Action string   `json:"action"`
	TabIDs []string `json:"tabIds"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewHub creates an unstarted hub.
func NewHub(opts Options) *Hub {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	return &Hub{
		opts:       opts,
		subscribed: map[string]bool{},
	}
}

// Start listens on the configured address and serves in the background
// until Stop. ctx becomes the base context of every request.
func (h *Hub) Start(ctx context.Context) error {
	if h.server != nil {
		return errors.New("viewstream: already started")
	}
	ln, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return fmt.Errorf("viewstream: listen: %w", err)
	}
	h.url = fmt.Sprintf("ws://127.0.0.1:%d/ws", ln.Addr().(*net.TCPAddr).Port)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Serve is not restarted: a panic there means the listener is unusable.
	workerutil.Go(ctx, "viewstream-server", &h.wg, func(context.Context) {
		if serveErr := h.server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("[DEBUG-WS] server error", "error", serveErr)
		}
	}, workerutil.RestartPolicy{MaxRestarts: 1})

	slog.Info("[DEBUG-WS] server started", "url", h.url)
	return nil
}

// Stop closes the client connection and shuts the server down. Only the
// first call has an effect.
func (h *Hub) Stop() error {
	var stopErr error
	h.stopOnce.Do(func() {
		h.mu.Lock()
		conn := h.conn
		h.conn = nil
		h.subscribed = map[string]bool{}
		h.mu.Unlock()
		if conn != nil {
			h.closeConn(conn, "hub stop")
		}

		if h.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := h.server.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("viewstream: shutdown: %w", err)
			}
			h.wg.Wait()
		}
		slog.Info("[DEBUG-WS] server stopped")
	})
	return stopErr
}

// URL returns the client endpoint, or "" before Start.
func (h *Hub) URL() string { return h.url }

// HasActiveConnection reports whether a client is connected.
func (h *Hub) HasActiveConnection() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conn != nil
}

// IsSubscribed reports whether the current client follows tabID.
func (h *Hub) IsSubscribed(tabID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.subscribed[tabID]
}

// BroadcastTab sends text for tabID if the client subscribed to it. Write
// failures drop the connection; the client is expected to reconnect.
func (h *Hub) BroadcastTab(tabID, text string) {
	h.mu.RLock()
	conn := h.conn
	subscribed := h.subscribed[tabID]
	h.mu.RUnlock()
	if conn == nil || !subscribed {
		return
	}
	h.sendTab(conn, tabID, text)
}

func (h *Hub) sendTab(conn *websocket.Conn, tabID, text string) {
	frame, err := EncodeTabText(tabID, text)
	if err != nil {
		slog.Warn("[DEBUG-WS] encode failed", "tabId", tabID, "error", err)
		return
	}
	if err := h.write(conn, websocket.BinaryMessage, frame); err != nil {
		slog.Warn("[DEBUG-WS] write failed, closing connection", "tabId", tabID, "error", err)
		h.dropConn(conn, "write error")
	}
}

// write serializes writes and bounds each by writeDeadline. Nothing is
// logged under writeMu: a log record can come back as a BroadcastTab.
func (h *Hub) write(conn *websocket.Conn, messageType int, payload []byte) error {
	h.writeMu.Lock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		h.writeMu.Unlock()
		return fmt.Errorf("set write deadline: %w", err)
	}
	err := conn.WriteMessage(messageType, payload)
	clearErr := conn.SetWriteDeadline(time.Time{})
	h.writeMu.Unlock()

	if clearErr != nil {
		slog.Debug("[DEBUG-WS] clear write deadline failed", "error", clearErr)
	}
	return err
}

// dropConn forgets conn if it is still current and closes it.
func (h *Hub) dropConn(conn *websocket.Conn, reason string) {
	h.mu.Lock()
	if h.conn == conn {
		h.conn = nil
		h.subscribed = map[string]bool{}
	}
	h.mu.Unlock()
	h.closeConn(conn, reason)
}

func (h *Hub) closeConn(conn *websocket.Conn, reason string) {
	if err := conn.Close(); err != nil {
		slog.Debug("[DEBUG-WS] connection close", "reason", reason, "error", err)
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("[DEBUG-WS] upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxReadMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		h.closeConn(conn, "initial read deadline")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	h.mu.Lock()
	previous := h.conn
	h.conn = conn
	h.subscribed = map[string]bool{}
	h.mu.Unlock()
	if previous != nil {
		h.closeConn(previous, "replaced by new connection")
	}
	slog.Debug("[DEBUG-WS] client connected", "remoteAddr", conn.RemoteAddr())

	ctx, cancel := context.WithCancel(r.Context())
	var pingWG sync.WaitGroup
	workerutil.Go(ctx, "viewstream-ping", &pingWG, func(ctx context.Context) {
		h.pingLoop(ctx, conn)
	}, workerutil.RestartPolicy{MaxRestarts: 1})

	defer func() {
		cancel()
		pingWG.Wait()
		h.dropConn(conn, "read loop exit")
		slog.Debug("[DEBUG-WS] client disconnected")
	}()

	for {
		msgType, payload, readErr := conn.ReadMessage()
		if readErr != nil {
			if websocket.IsUnexpectedCloseError(readErr, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("[DEBUG-WS] read error", "error", readErr)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var msg controlMsg
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.sendError(conn, fmt.Sprintf("invalid JSON: %s", err))
			continue
		}
		h.handleControl(conn, msg)
	}
}

func (h *Hub) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.write(conn, websocket.PingMessage, nil); err != nil {
				slog.Debug("[DEBUG-WS] ping failed", "error", err)
				h.dropConn(conn, "ping failure")
				return
			}
		}
	}
}

// handleControl applies a subscription change and, for new subscriptions,
// pushes a snapshot of each tab.
func (h *Hub) handleControl(conn *websocket.Conn, msg controlMsg) {
	var added []string

	h.mu.Lock()
	if h.conn != conn {
		h.mu.Unlock()
		return
	}
	switch msg.Action {
	case actionSubscribe:
		for _, id := range msg.TabIDs {
			if id == "" || h.subscribed[id] {
				continue
			}
			h.subscribed[id] = true
			added = append(added, id)
		}
	case actionUnsubscribe:
		for _, id := range msg.TabIDs {
			delete(h.subscribed, id)
		}
	default:
		h.mu.Unlock()
		h.sendError(conn, fmt.Sprintf("unknown action %q", msg.Action))
		return
	}
	h.mu.Unlock()

	if h.opts.Source == nil {
		return
	}
	for _, id := range added {
		if text, ok := h.opts.Source.TabText(id); ok {
			h.sendTab(conn, id, text)
		}
	}
}

func (h *Hub) sendError(conn *websocket.Conn, message string) {
	payload, err := json.Marshal(errorMsg{Type: "error", Message: message})
	if err != nil {
		return
	}
	if err := h.write(conn, websocket.TextMessage, payload); err != nil {
		slog.Debug("[DEBUG-WS] send error failed", "error", err)
		h.dropConn(conn, "write error in sendError")
	}
}
